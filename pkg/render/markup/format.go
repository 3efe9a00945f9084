package markup

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CamelCase converts a snake_case property key to the camelCase attribute
// spelling. Keys already in camelCase pass through unchanged.
func CamelCase(key string) string {
	parts := strings.Split(key, "_")
	if len(parts) == 1 {
		return key
	}
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			b.WriteString(p)
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// FormatScalar formats a scalar property value as a complete attribute
// token: strings are quoted and escaped, booleans and numbers are braced
// literals, nil is the braced null literal, and anything else is braced
// canonical JSON (encoding/json sorts map keys, keeping output stable).
func FormatScalar(v any) string {
	switch x := v.(type) {
	case nil:
		return "{null}"
	case string:
		return strconv.Quote(x)
	case bool:
		return fmt.Sprintf("{%t}", x)
	case int:
		return fmt.Sprintf("{%d}", x)
	case int32:
		return fmt.Sprintf("{%d}", x)
	case int64:
		return fmt.Sprintf("{%d}", x)
	case float32:
		return "{" + strconv.FormatFloat(float64(x), 'g', -1, 32) + "}"
	case float64:
		return "{" + strconv.FormatFloat(x, 'g', -1, 64) + "}"
	case json.Number:
		return "{" + x.String() + "}"
	default:
		data, err := json.Marshal(x)
		if err != nil {
			// Unmarshalable scalar payloads degrade to their Go string
			// form rather than failing the whole build.
			return strconv.Quote(fmt.Sprintf("%v", x))
		}
		return "{" + string(data) + "}"
	}
}
