package conversation

import "strings"

// ErrorClassifier decides whether a vendor error means the request
// carried a field the vendor does not accept. The vendor reports this
// only as prose in the error body, so the matching lives behind this
// interface where it can be unit-tested away from any network I/O.
type ErrorClassifier interface {
	IsUnknownField(errorBody string) bool
}

// UnknownFieldClassifier matches the vendor's known error vocabulary
// for rejected optional fields.
type UnknownFieldClassifier struct{}

var unknownFieldMarkers = []string{
	"unknown field",
	"unrecognized",
}

func (UnknownFieldClassifier) IsUnknownField(errorBody string) bool {
	body := strings.ToLower(errorBody)
	for _, marker := range unknownFieldMarkers {
		if strings.Contains(body, marker) {
			return true
		}
	}
	return false
}
