// FILE: ziplog/src/internal/normalize/normalize.go
package normalize

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/zipscene/ziplog/src/internal/core"

	"github.com/pkg/errors"
)

// LogTypeKey in the first data object selects the subsystem the entry is routed to
const LogTypeKey = "logType"

// ScalarsKey is the data key collecting arguments that are neither text nor objects
const ScalarsKey = "data"

// Options configures a Normalizer
type Options struct {
	Levels         *core.Levels
	AppName        string
	SuppressStack  bool
	DefaultMessage string
	Now            func() time.Time

	// OnAmbiguity, when set, is called with ErrAmbiguousErrors wrapping every
	// error argument that was ignored because an earlier one was already used.
	OnAmbiguity func(err error)
}

// Normalizer turns the arguments of a producer's log call into a canonical Entry
type Normalizer struct {
	opts Options
}

// Fielder is implemented by errors that carry structured fields
type Fielder interface {
	Fields() map[string]any
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// New creates a normalizer, filling unset options with defaults
func New(opts Options) *Normalizer {
	if opts.Levels == nil {
		opts.Levels = core.DefaultLevels()
	}
	if opts.AppName == "" {
		opts.AppName = core.DefaultAppName
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Normalizer{opts: opts}
}

// Levels returns the level set entries are validated against
func (n *Normalizer) Levels() *core.Levels {
	return n.opts.Levels
}

// Normalize builds an Entry from args. Non-zero fields of fixed always take
// precedence over anything inferred from args. Errors are returned only for
// programmer misuse: an unknown level or an argument that cannot be data.
func (n *Normalizer) Normalize(fixed core.Entry, args ...any) (core.Entry, error) {
	if fixed.Level != "" {
		level, err := n.opts.Levels.Canonical(fixed.Level)
		if err != nil {
			return core.Entry{}, err
		}
		fixed.Level = level
	}

	classified, err := Classify(n.opts.Levels, args)
	if err != nil {
		return core.Entry{}, err
	}

	var entry core.Entry
	if single, ok := n.singleEntry(classified); ok {
		entry = single.Merge(fixed)
	} else {
		entry = n.merge(fixed, classified)
	}

	if entry.Level == "" {
		entry.Level = core.DefaultLevel
	}
	level, err := n.opts.Levels.Canonical(entry.Level)
	if err != nil {
		return core.Entry{}, err
	}
	entry.Level = level

	if entry.Message == "" {
		entry.Message = n.opts.DefaultMessage
	}
	if entry.App == "" {
		entry.App = n.opts.AppName
	}
	entry.ApplyDefaults(n.opts.Now())

	return entry, nil
}

// singleEntry recognizes a call whose only argument is already an entry
func (n *Normalizer) singleEntry(args []Arg) (core.Entry, bool) {
	if len(args) != 1 {
		return core.Entry{}, false
	}

	switch args[0].Kind {
	case KindEntry:
		return args[0].Entry, true
	case KindObject:
		if _, ok := args[0].Object["level"]; !ok {
			return core.Entry{}, false
		}
		raw, err := json.Marshal(args[0].Object)
		if err != nil {
			return core.Entry{}, false
		}
		var entry core.Entry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return core.Entry{}, false
		}

		// Keys that are not entry fields are kept as data
		extra := make(map[string]any)
		for k, v := range args[0].Object {
			if !entryKeys[k] {
				extra[k] = v
			}
		}
		if logType, ok := extra[LogTypeKey].(string); ok {
			delete(extra, LogTypeKey)
			if entry.Subsystem == "" {
				entry.Subsystem = logType
			}
		}
		if len(extra) > 0 {
			entry.Data = deepMerge(cloneMap(extra), entry.Data)
		}
		return entry, true
	}
	return core.Entry{}, false
}

// entryKeys holds the JSON names of the core.Entry fields
var entryKeys = func() map[string]bool {
	keys := make(map[string]bool)
	t := reflect.TypeOf(core.Entry{})
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			keys[name] = true
		}
	}
	return keys
}()

func (n *Normalizer) merge(fixed core.Entry, args []Arg) core.Entry {
	entry := core.Entry{
		Subsystem: fixed.Subsystem,
		Level:     fixed.Level,
	}

	var (
		texts       []string
		prefixes    []string
		usedError   bool
		firstObject = true
		scalars     []any
	)

	for _, arg := range args {
		switch arg.Kind {
		case KindLevel:
			if entry.Level == "" {
				entry.Level = arg.Text
			} else {
				prefixes = append(prefixes, arg.Text+": ")
			}

		case KindText:
			texts = append(texts, arg.Text)

		case KindError:
			if usedError {
				if n.opts.OnAmbiguity != nil {
					n.opts.OnAmbiguity(fmt.Errorf("%w: ignored %q", core.ErrAmbiguousErrors, arg.Err.Error()))
				}
				continue
			}
			usedError = true
			n.mergeError(&entry, &texts, arg.Err)

		case KindEntry:
			mergeEntry(&entry, &texts, arg.Entry)

		case KindObject:
			obj := arg.Object
			if firstObject {
				firstObject = false
				if logType, ok := obj[LogTypeKey].(string); ok {
					delete(obj, LogTypeKey)
					if entry.Subsystem == "" && logType != "" {
						entry.Subsystem = logType
					}
				}
				entry.Data = deepMerge(entry.Data, obj)
			} else {
				entry.Details = deepMerge(entry.Details, obj)
			}

		case KindScalar:
			scalars = append(scalars, arg.Value)
		}
	}

	if len(scalars) > 0 {
		if entry.Data == nil {
			entry.Data = make(map[string]any, 1)
		}
		if existing, ok := entry.Data[ScalarsKey].([]any); ok {
			scalars = append(existing, scalars...)
		}
		entry.Data[ScalarsKey] = scalars
	}

	message := strings.Join(texts, "; ")
	if len(prefixes) > 0 {
		message = strings.TrimSpace(strings.Join(prefixes, "") + message)
	}
	entry.Message = message

	return entry.Merge(fixed)
}

// mergeEntry folds an entry passed alongside other arguments field by field:
// its message joins the text, its data and details merge into the entry's,
// and its level, subsystem, app and time fill in what is still unset.
func mergeEntry(entry *core.Entry, texts *[]string, e core.Entry) {
	if entry.Level == "" {
		entry.Level = e.Level
	}
	if entry.Subsystem == "" {
		entry.Subsystem = e.Subsystem
	}
	if entry.App == "" {
		entry.App = e.App
	}
	if entry.Time.IsZero() {
		entry.Time = e.Time
	}
	if e.Message != "" {
		*texts = append(*texts, e.Message)
	}
	if len(e.Data) > 0 {
		entry.Data = deepMerge(entry.Data, e.Data)
	}
	if len(e.Details) > 0 {
		entry.Details = deepMerge(entry.Details, e.Details)
	}
	for slot, days := range e.KeepDays {
		if entry.KeepDays == nil {
			entry.KeepDays = make(core.KeepDays, len(e.KeepDays))
		}
		entry.KeepDays[slot] = days
	}
}

// mergeError folds the first error argument into the entry: its text becomes
// the message when none was given yet, its stack goes to details and its
// fields to data.
func (n *Normalizer) mergeError(entry *core.Entry, texts *[]string, err error) {
	if len(*texts) == 0 {
		*texts = append(*texts, err.Error())
	} else {
		entry.Details = deepMerge(entry.Details, map[string]any{"error": err.Error()})
	}

	if !n.opts.SuppressStack {
		if stack := stackOf(err); stack != "" {
			entry.Details = deepMerge(entry.Details, map[string]any{"stack": stack})
		}
	}

	if cause := errors.Cause(err); cause != nil && cause != err && cause.Error() != err.Error() {
		entry.Details = deepMerge(entry.Details, map[string]any{"cause": cause.Error()})
	}

	if fields := fieldsOf(err); len(fields) > 0 {
		entry.Data = deepMerge(entry.Data, fields)
	}
}

// stackOf returns the outermost stack trace recorded anywhere in err's chain
func stackOf(err error) string {
	var st stackTracer
	if !errors.As(err, &st) {
		return ""
	}
	return strings.TrimLeft(fmt.Sprintf("%+v", st.StackTrace()), "\n")
}

// fieldsOf collects structured fields of an error: an explicit Fields method
// wins, otherwise the exported fields of a struct error type are used.
func fieldsOf(err error) map[string]any {
	var f Fielder
	if errors.As(err, &f) {
		return cloneMap(f.Fields())
	}

	rv := reflect.ValueOf(err)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	obj, ok, convErr := toObject(err)
	if convErr != nil || !ok {
		return nil
	}
	return obj
}
