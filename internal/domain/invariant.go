package domain

import "fmt"

// debugAssertions включается build-тегом dreaddebug (см. invariant_debug.go).
// В release-сборках нарушение инварианта логируется и эскалируется
// ошибкой, в debug — роняет процесс немедленно.
var debugAssertions = false

// Invariant проверяет условие, которое обязано выполняться по построению.
// Возвращает ErrInvariantViolated (обернутый контекстом) в release,
// паникует в debug.
func Invariant(cond bool, format string, args ...any) error {
	if cond {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	if debugAssertions {
		panic("invariant violated: " + msg)
	}
	return fmt.Errorf("%w: %s", ErrInvariantViolated, msg)
}
