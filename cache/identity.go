package cache

import (
	"reflect"
	"regexp"
	"runtime"
	"strings"
)

// AnonymousIdentity is the identity shared by all function literals.
const AnonymousIdentity = "<anonymous>"

var closureSegment = regexp.MustCompile(`^(func)?\d+$`)

// FuncIdentity returns a stable identity for fn: its fully qualified name,
// such as "strings.ToUpper" or
// "github.com/goliatone/go-search-cache/storage.filmSearch.GetItem".
// Methods keep their receiver type, method values lose the "-fm" suffix and
// closures map to AnonymousIdentity.
func FuncIdentity(fn any) string {
	rv := reflect.ValueOf(fn)
	if !rv.IsValid() || rv.Kind() != reflect.Func || rv.IsNil() {
		return AnonymousIdentity
	}

	rf := runtime.FuncForPC(rv.Pointer())
	if rf == nil {
		return AnonymousIdentity
	}

	name := strings.TrimSuffix(rf.Name(), "-fm")
	name = strings.ReplaceAll(name, "[...]", "")

	base := name
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	segments := strings.Split(base, ".")
	if closureSegment.MatchString(segments[len(segments)-1]) {
		return AnonymousIdentity
	}

	return strings.NewReplacer("(*", "", "(", "", ")", "").Replace(name)
}
