package proxy

import (
	"bytes"
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"voygen/gateway/pkg/proxy/types"
)

const formContentType = "application/x-www-form-urlencoded"

func isFormRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == formContentType
}

// parseFormBody decodes a urlencoded body into a Body.
//
// Field values become JSON strings; a repeated field becomes an array.
// Bracketed keys nest: "trip[name]=x" yields {"trip":{"name":"x"}},
// "tags[]=a&tags[]=b" yields {"tags":["a","b"]}, and an object whose keys
// are all indexes ("hotels[0][name]") becomes an array in index order.
func parseFormBody(data []byte) (Body, error) {
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return nil, &RequestError{
			Message: types.ErrorInvalidForm,
			Code:    types.CodeInvalidValue,
			Param:   "body",
		}
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	root := map[string]any{}
	for _, key := range keys {
		setFormValue(root, splitFormKey(key), values[key])
	}

	body := make(Body, len(root))
	for key, value := range root {
		raw, err := marshalFormValue(indexedToArray(value))
		if err != nil {
			return nil, err
		}
		body[key] = raw
	}
	return body, nil
}

// splitFormKey splits "a[b][]" into ["a", "b", ""]. Keys that are not
// well-formed bracket paths are kept whole.
func splitFormKey(key string) []string {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return []string{key}
	}

	parts := []string{key[:open]}
	rest := key[open:]
	for rest != "" {
		end := strings.IndexByte(rest, ']')
		if rest[0] != '[' || end < 0 {
			return []string{key}
		}
		parts = append(parts, rest[1:end])
		rest = rest[end+1:]
	}
	return parts
}

func setFormValue(root map[string]any, path []string, vals []string) {
	n := len(path)
	if n > 1 && path[n-1] == "" {
		parent := descend(root, path[:n-2])
		list, _ := parent[path[n-2]].([]any)
		for _, v := range vals {
			list = append(list, v)
		}
		parent[path[n-2]] = list
		return
	}

	parent := descend(root, path[:n-1])
	if len(vals) == 1 {
		parent[path[n-1]] = vals[0]
		return
	}
	list := make([]any, len(vals))
	for i, v := range vals {
		list[i] = v
	}
	parent[path[n-1]] = list
}

func descend(node map[string]any, path []string) map[string]any {
	for _, seg := range path {
		child, ok := node[seg].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[seg] = child
		}
		node = child
	}
	return node
}

// indexedToArray turns objects keyed only by array indexes into arrays.
func indexedToArray(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}

	indexes := make([]int, 0, len(m))
	for key, child := range m {
		m[key] = indexedToArray(child)
		if i, err := strconv.Atoi(key); err == nil && i >= 0 && strconv.Itoa(i) == key {
			indexes = append(indexes, i)
		}
	}
	if len(indexes) == 0 || len(indexes) != len(m) {
		return m
	}

	sort.Ints(indexes)
	list := make([]any, len(indexes))
	for j, i := range indexes {
		list[j] = m[strconv.Itoa(i)]
	}
	return list
}

func marshalFormValue(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSpace(buf.Bytes()), nil
}
