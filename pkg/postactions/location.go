package postactions

import "net/url"

// Values is a Location backed by url.Values, good for a request-scoped
// query string or an in-memory location in tests.
type Values struct {
	q url.Values
}

var _ Location = (*Values)(nil)

func NewValues(q url.Values) *Values {
	if q == nil {
		q = url.Values{}
	}
	return &Values{q: q}
}

func (v *Values) Get(name string) (string, bool) {
	if !v.q.Has(name) {
		return "", false
	}
	return v.q.Get(name), true
}

func (v *Values) Set(name, value string) {
	v.q.Set(name, value)
}

func (v *Values) Delete(name string) {
	v.q.Del(name)
}

// Encode renders the query string, e.g. for a redirect location.
func (v *Values) Encode() string {
	return v.q.Encode()
}
