package errors

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrorInfo is a store or infrastructure error translated for the client.
type ErrorInfo struct {
	Status  int
	Code    string
	Message string
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"

	mysqlDuplicateEntry  = 1062
	mysqlRowReferenced   = 1451
	mysqlNoReferencedRow = 1452
)

// IsDuplicateKey reports whether err is a unique constraint violation on any
// of the supported drivers.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique constraint") || strings.Contains(lower, "duplicate key")
}

// IsForeignKeyViolation reports whether err is a referential integrity failure.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlRowReferenced || myErr.Number == mysqlNoReferencedRow
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}

// ParseError maps an error to a status, code and safe message. context names
// the resource being handled ("product", "order", ...).
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Status: http.StatusInternalServerError, Code: InternalServerError, Message: "Internal server error"}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Status: http.StatusNotFound, Code: notFoundCode(context), Message: notFoundMessage(context)}
	}

	if IsDuplicateKey(err) {
		return parseDuplicateKeyError(err.Error())
	}

	if IsForeignKeyViolation(err) {
		return ErrorInfo{Status: http.StatusConflict, Code: ResourceConflict, Message: "Referenced data does not exist or is still in use"}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgNotNullViolation {
		return ErrorInfo{Status: http.StatusBadRequest, Code: ValidationRequired, Message: "A required field is missing"}
	}
	if strings.Contains(strings.ToLower(err.Error()), "not null constraint") {
		return ErrorInfo{Status: http.StatusBadRequest, Code: ValidationRequired, Message: "A required field is missing"}
	}

	return ErrorInfo{Status: http.StatusInternalServerError, Code: InternalDatabaseError, Message: "Internal server error"}
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	lower := strings.ToLower(errStr)

	switch {
	case strings.Contains(lower, "email"):
		return ErrorInfo{Status: http.StatusConflict, Code: AuthEmailAlreadyExists, Message: "Email already registered"}
	case strings.Contains(lower, "username"):
		return ErrorInfo{Status: http.StatusConflict, Code: AuthUsernameExists, Message: "Username already taken"}
	case strings.Contains(lower, "categories"):
		return ErrorInfo{Status: http.StatusConflict, Code: CategoryExists, Message: "Category already exists"}
	}
	return ErrorInfo{Status: http.StatusConflict, Code: ResourceAlreadyExists, Message: "Resource already exists"}
}

func notFoundCode(context string) string {
	switch strings.ToLower(context) {
	case "product":
		return ProductNotFound
	case "category":
		return CategoryNotFound
	case "order":
		return OrderNotFound
	}
	return ResourceNotFound
}

func notFoundMessage(context string) string {
	if context == "" {
		return "Resource not found"
	}
	c := strings.ToLower(context)
	return strings.ToUpper(c[:1]) + c[1:] + " not found"
}

// ParseAndRespond writes the parsed error as the response.
func ParseAndRespond(c *gin.Context, err error, context string) {
	info := ParseError(err, context)
	RespondWithError(c, info.Status, info.Code, info.Message)
}
