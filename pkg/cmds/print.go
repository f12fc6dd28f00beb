package cmds

import (
	"fmt"
	"io"
	"regexp"

	"github.com/hay-kot/convoy/pkg/command"
)

// placeholderRe matches {key} references interpolated from the shared store.
var placeholderRe = regexp.MustCompile(`\{([A-Za-z0-9_.-]+)\}`)

// Print writes a message to an output writer, synchronously. Occurrences of
// {key} in the message are replaced with the value stored under that key in
// the shared store; unknown keys are left as-is.
type Print struct {
	out     io.Writer
	message string
	store   *command.Store
}

// NewPrint creates a print command writing message to out.
func NewPrint(out io.Writer, message string) *Print {
	return &Print{out: out, message: message}
}

// SetStore implements command.StoreAware.
func (c *Print) SetStore(s *command.Store) { c.store = s }

// Execute writes the interpolated message followed by a newline.
func (c *Print) Execute() {
	fmt.Fprintln(c.out, Expand(c.message, c.store))
}

// Expand replaces {key} placeholders in s with values from the store.
// A nil store or a missing key leaves the placeholder untouched.
func Expand(s string, store *command.Store) string {
	if store == nil {
		return s
	}
	return placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
		key := m[1 : len(m)-1]
		val, ok := store.Get(key)
		if !ok {
			return m
		}
		return fmt.Sprint(val)
	})
}
