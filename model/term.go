package model

import (
	"encoding/json"
	"net/url"
	"strconv"
)

type Status int

const (
	StatusNew1     Status = 1
	StatusNew2     Status = 2
	StatusLearning Status = 3
	StatusLearned4 Status = 4
	StatusLearned  Status = 5
	StatusIgnored  Status = 98
	StatusWellKnow Status = 99

	DefaultStatus = StatusNew1
)

var statusNames = map[Status]string{
	StatusNew1:     "1",
	StatusNew2:     "2",
	StatusLearning: "3",
	StatusLearned4: "4",
	StatusLearned:  "5",
	StatusIgnored:  "Ign",
	StatusWellKnow: "WKn",
}

func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "?"
}

// ParseStatus maps a radio value to a status code. Anything outside the
// fixed set resolves to DefaultStatus and ok=false.
func ParseStatus(v string) (Status, bool) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return DefaultStatus, false
	}
	s := Status(n)
	if !s.Valid() {
		return DefaultStatus, false
	}
	return s, true
}

// TermFormData is an editable term as read from the term edit page.
type TermFormData struct {
	TermID       int
	Text         string
	LanguageID   int
	Sentence     string
	Translation  string
	Romanization string
	Status       Status
	Parents      []string
	Tags         []string
	SyncStatus   bool
}

type tagifyValue struct {
	Value string `json:"value"`
}

// EncodeTagList renders values in the tagify shape the server's hidden
// inputs use: [{"value": "..."}].
func EncodeTagList(values []string) string {
	items := make([]tagifyValue, 0, len(values))
	for _, v := range values {
		items = append(items, tagifyValue{Value: v})
	}
	b, _ := json.Marshal(items)
	return string(b)
}

// DecodeTagList is the inverse of EncodeTagList. Items without a value are
// skipped.
func DecodeTagList(s string) ([]string, error) {
	var items []tagifyValue
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, err
	}
	values := make([]string, 0, len(items))
	for _, it := range items {
		if it.Value == "" {
			continue
		}
		values = append(values, it.Value)
	}
	return values, nil
}

// FormValues builds the resubmission body. sync_status is only present when
// the term is linked to its parent: the server treats any presence of the
// field as true.
func (t TermFormData) FormValues() url.Values {
	v := url.Values{}
	v.Set("language_id", strconv.Itoa(t.LanguageID))
	v.Set("text", t.Text)
	v.Set("translation", t.Translation)
	v.Set("romanization", t.Romanization)
	v.Set("status", strconv.Itoa(int(t.Status)))
	v.Set("parentslist", EncodeTagList(t.Parents))
	v.Set("termtagslist", EncodeTagList(t.Tags))
	if t.SyncStatus {
		v.Set("sync_status", "on")
	}
	return v
}
