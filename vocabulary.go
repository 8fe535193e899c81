package enhancers

// matcherKind identifies which internal matcher a textual or binary
// matcher name maps onto.
type matcherKind uint8

const (
	kindModule matcherKind = iota
	kindFunction
	kindCategory
	kindPath
	kindPackage
	kindFamily
	kindApp
	kindType
	kindValue
	kindMechanism
)

func (k matcherKind) isException() bool {
	return k == kindType || k == kindValue || k == kindMechanism
}

func (k matcherKind) isPathLike() bool {
	return k == kindPath || k == kindPackage
}

// canonicalName is the name printed in a rule's canonical textual form and
// used as the tag-free field name when building field matchers.
func (k matcherKind) canonicalName() string {
	switch k {
	case kindModule:
		return "module"
	case kindFunction:
		return "function"
	case kindCategory:
		return "category"
	case kindPath:
		return "path"
	case kindPackage:
		return "package"
	case kindFamily:
		return "family"
	case kindApp:
		return "app"
	case kindType:
		return "type"
	case kindValue:
		return "value"
	case kindMechanism:
		return "mechanism"
	default:
		return "?"
	}
}

// matcherNamesByAlias is the textual matcher-name vocabulary, including
// aliases, from the surface grammar.
var matcherNamesByAlias = map[string]matcherKind{
	"module":           kindModule,
	"stack.module":     kindModule,
	"function":         kindFunction,
	"stack.function":   kindFunction,
	"category":         kindCategory,
	"path":             kindPath,
	"stack.abs_path":   kindPath,
	"package":          kindPackage,
	"stack.package":    kindPackage,
	"family":           kindFamily,
	"app":              kindApp,
	"type":             kindType,
	"error.type":       kindType,
	"value":            kindValue,
	"error.value":      kindValue,
	"mechanism":        kindMechanism,
	"error.mechanism":  kindMechanism,
}

// matcherTagByKind is the single-character matcher tag used in the compact
// binary encoding.
var matcherTagByKind = map[matcherKind]byte{
	kindPath:       'p',
	kindFunction:   'f',
	kindModule:     'm',
	kindPackage:    'P',
	kindApp:        'a',
	kindType:       't',
	kindValue:      'v',
	kindMechanism:  'M',
	kindCategory:   'c',
	kindFamily:     'F',
}

var matcherKindByTag = func() map[byte]matcherKind {
	m := make(map[byte]matcherKind, len(matcherTagByKind))
	for k, t := range matcherTagByKind {
		m[t] = k
	}
	return m
}()

func fieldForKind(k matcherKind) FrameField {
	switch k {
	case kindCategory:
		return FieldCategory
	case kindFunction:
		return FieldFunction
	case kindModule:
		return FieldModule
	case kindPackage:
		return FieldPackage
	case kindPath:
		return FieldPath
	}
	return FieldCategory
}

func exceptionFieldForKind(k matcherKind) ExceptionField {
	switch k {
	case kindValue:
		return ExceptionValue
	case kindMechanism:
		return ExceptionMechanism
	default:
		return ExceptionType
	}
}

// buildMatcher constructs either a FrameMatcher or an ExceptionMatcher from
// a resolved kind, returning exactly one of the two. caches must not be
// nil; pass NoCaches() to disable compiled-regex reuse.
func buildMatcher(caches *Caches, kind matcherKind, negated bool, offset FrameOffset, argument string) (FrameMatcher, ExceptionMatcher, error) {
	switch kind {
	case kindFamily:
		return &familyMatcher{neg: negated, off: offset, pattern: argument, bits: ParseFamilies(argument)}, nil, nil
	case kindApp:
		expected, ok := parseBool(argument)
		if !ok {
			return nil, nil, &ParseError{Message: "app matcher argument must be a boolean (1/0/yes/no/true/false)", Line: argument, Position: -1}
		}
		return &inAppMatcher{neg: negated, off: offset, expected: expected, pattern: argument}, nil, nil
	case kindType, kindValue, kindMechanism:
		re, err := caches.compileRegex(argument, false)
		if err != nil {
			return nil, nil, err
		}
		return nil, &exceptionFieldMatcher{
			field:   exceptionFieldForKind(kind),
			kind:    kind,
			name:    kind.canonicalName(),
			neg:     negated,
			pattern: argument,
			regex:   re,
		}, nil
	default: // module, function, category, path, package
		pathLike := kind.isPathLike()
		re, err := caches.compileRegex(argument, pathLike)
		if err != nil {
			return nil, nil, err
		}
		return &fieldMatcher{
			field:    fieldForKind(kind),
			kind:     kind,
			name:     kind.canonicalName(),
			pathLike: pathLike,
			neg:      negated,
			off:      offset,
			pattern:  argument,
			regex:    re,
		}, nil, nil
	}
}
