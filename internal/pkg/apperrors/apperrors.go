// Package apperrors defines the closed failure taxonomy shared by every
// layer of the backend. Each error kind belongs to exactly one layer and
// carries exactly one default HTTP status; the handlers package is the
// only consumer of that mapping.
package apperrors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Layer identifies the architectural layer that owns an error kind.
// Kinds never migrate between layers; the single sanctioned relabeling
// (absence becoming KindResourceNotFound, version misses becoming
// KindConflict) happens in the service layer by constructing a new
// error, not by mutating an existing one.
type Layer string

const (
	LayerDomain         Layer = "domain"
	LayerUsecase        Layer = "usecase"
	LayerInterface      Layer = "interface"
	LayerInfrastructure Layer = "infrastructure"
)

// Kind is the stable machine-readable code of an error. The set below is
// closed: constructors in this package are the only way to produce an
// *Error, so every Kind in flight is one of these.
type Kind string

const (
	KindDomainValidation     Kind = "domain_validation"
	KindBusinessRule         Kind = "business_rule_violation"
	KindAggregateConsistency Kind = "aggregate_consistency"
	KindWorkflow             Kind = "workflow"

	KindUseCaseValidation Kind = "usecase_validation"
	KindResourceNotFound  Kind = "resource_not_found"
	KindConflict          Kind = "conflict"
	KindAuthorization     Kind = "authorization"

	KindInterfaceValidation Kind = "interface_validation"
	KindAuthentication      Kind = "authentication"

	KindPersistence Kind = "persistence"
)

// GenericPersistenceMessage is the only message callers ever see for
// infrastructure failures. Diagnostic context stays server-side.
const GenericPersistenceMessage = "an internal error occurred"

// Error is the single concrete error type of the taxonomy.
//
// Message is safe for logs; PublicMessage is what may cross the HTTP
// boundary. Field/Rule/Entity/ID/Op are kind-specific payload and are
// zero for kinds that do not use them. Cause wraps the underlying
// failure for errors.Is/As chains and is never serialized.
type Error struct {
	Kind    Kind
	Layer   Layer
	Message string

	// Field names the offending input field (KindDomainValidation,
	// KindUseCaseValidation, KindInterfaceValidation).
	Field string
	// Rule names the violated business rule (KindBusinessRule).
	Rule string
	// Entity and ID identify the missing resource (KindResourceNotFound).
	Entity string
	ID     string
	// Op describes the failing persistence operation, e.g.
	// "taskRepo.Save" (KindPersistence). Never exposed to callers.
	Op string

	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// HTTPStatus returns the default transport status for the error's kind.
// The mapping is total: the default arm covers the infrastructure branch
// and is unreachable for any other constructor-produced kind.
//
// KindAuthorization deliberately maps to 404, not 403, so that callers
// cannot probe for the existence of resources they do not own.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindDomainValidation, KindBusinessRule, KindAggregateConsistency, KindWorkflow:
		return 422
	case KindUseCaseValidation, KindInterfaceValidation:
		return 400
	case KindResourceNotFound, KindAuthorization:
		return 404
	case KindConflict:
		return 409
	case KindAuthentication:
		return 401
	default:
		return 500
	}
}

// PublicMessage returns the caller-visible message. Infrastructure
// errors are replaced with a fixed generic message so that operation
// descriptors, driver errors, and connection details never leak.
func (e *Error) PublicMessage() string {
	if e.Layer == LayerInfrastructure {
		return GenericPersistenceMessage
	}
	return e.Message
}

// Domain layer constructors. These are raised only by entity and value
// constructors and mutators.

// NewDomainValidation reports a field-level construction failure.
func NewDomainValidation(field, message string) *Error {
	return &Error{Kind: KindDomainValidation, Layer: LayerDomain, Field: field, Message: message}
}

// NewBusinessRule reports a semantic rule violation, named by rule.
func NewBusinessRule(rule, message string) *Error {
	return &Error{Kind: KindBusinessRule, Layer: LayerDomain, Rule: rule, Message: message}
}

func NewAggregateConsistency(message string) *Error {
	return &Error{Kind: KindAggregateConsistency, Layer: LayerDomain, Message: message}
}

func NewWorkflow(message string) *Error {
	return &Error{Kind: KindWorkflow, Layer: LayerDomain, Message: message}
}

// Usecase layer constructors. Raised only by services.

func NewUseCaseValidation(field, message string) *Error {
	return &Error{Kind: KindUseCaseValidation, Layer: LayerUsecase, Field: field, Message: message}
}

// NewResourceNotFound reports that the entity named by entity with the
// given identifier does not exist. Services construct this from a nil
// repository result; repositories themselves never do.
func NewResourceNotFound(entity, id string) *Error {
	return &Error{
		Kind:    KindResourceNotFound,
		Layer:   LayerUsecase,
		Entity:  entity,
		ID:      id,
		Message: fmt.Sprintf("%s %s not found", entity, id),
	}
}

func NewConflict(message string) *Error {
	return &Error{Kind: KindConflict, Layer: LayerUsecase, Message: message}
}

func NewAuthorization(message string) *Error {
	return &Error{Kind: KindAuthorization, Layer: LayerUsecase, Message: message}
}

// Interface layer constructors. Raised by middleware and handlers.

func NewInterfaceValidation(field, message string) *Error {
	return &Error{Kind: KindInterfaceValidation, Layer: LayerInterface, Field: field, Message: message}
}

func NewAuthentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Layer: LayerInterface, Message: message}
}

// Infrastructure layer constructors. Raised only by repository and
// resolver code.

// NewPersistence wraps a storage failure. op names the failing
// operation ("taskRepo.Save"); message is a short server-side summary.
func NewPersistence(op, message string, cause error) *Error {
	return &Error{Kind: KindPersistence, Layer: LayerInfrastructure, Op: op, Message: message, Cause: cause}
}

// AsError extracts a taxonomy error from an error chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is (or wraps) a taxonomy error of kind k.
func IsKind(err error, k Kind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == k
}

// pgUniqueViolation is the Postgres error code for unique_violation.
const pgUniqueViolation = "23505"

// IsDuplicateKey reports whether err wraps a Postgres unique-constraint
// violation. The repository surfaces such failures as persistence
// errors; the service layer uses this predicate to relabel them as
// conflicts without the repository ever emitting a usecase kind.
func IsDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
