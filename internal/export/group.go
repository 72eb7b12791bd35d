package export

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/SAP-F-2025/course-service/internal/models"
)

// FieldSignature identifies a field by kind and its label (or content for display fields).
type FieldSignature struct {
	Type models.FieldType
	Name string
}

// GroupKey identifies submissions that share a template shape: the same
// submission name and the same ordered field signatures.
type GroupKey struct {
	Name   string
	Fields []FieldSignature
}

// KeyOf derives the grouping key of a submission.
func KeyOf(s *models.Submission) GroupKey {
	key := GroupKey{Name: s.Name, Fields: make([]FieldSignature, 0, len(s.FormResponseData))}
	for _, f := range s.FormResponseData {
		key.Fields = append(key.Fields, FieldSignature{Type: f.Type, Name: f.DisplayName()})
	}
	return key
}

func (k GroupKey) Equal(o GroupKey) bool {
	if k.Name != o.Name || len(k.Fields) != len(o.Fields) {
		return false
	}
	for i := range k.Fields {
		if k.Fields[i] != o.Fields[i] {
			return false
		}
	}
	return true
}

// Group is one output file: submissions of the same shape, oldest first.
type Group struct {
	Key      GroupKey
	Filename string
	Items    []models.SubmissionWithComments
}

// GroupSubmissions partitions items by GroupKey. Groups keep first-seen
// order, items within a group are sorted by creation time ascending, and every
// group gets a unique CSV filename.
func GroupSubmissions(items []models.SubmissionWithComments) []*Group {
	var groups []*Group
	for _, item := range items {
		if item.Submission == nil {
			continue
		}
		key := KeyOf(item.Submission)

		var target *Group
		for _, g := range groups {
			if g.Key.Equal(key) {
				target = g
				break
			}
		}
		if target == nil {
			target = &Group{Key: key}
			groups = append(groups, target)
		}
		target.Items = append(target.Items, item)
	}

	for _, g := range groups {
		sort.SliceStable(g.Items, func(i, j int) bool {
			return g.Items[i].Submission.CreatedAt.Before(g.Items[j].Submission.CreatedAt)
		})
	}

	names := newNameAllocator()
	for _, g := range groups {
		g.Filename = names.allocate(SanitizeFilename(g.Key.Name) + ".csv")
	}
	return groups
}

// SanitizeFilename replaces characters that are unsafe in archive entry names.
func SanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20 || r == 0x7f:
			return -1
		case strings.ContainsRune(`/\:*?"<>|`, r):
			return '_'
		default:
			return r
		}
	}, name)
	name = strings.TrimSpace(strings.Trim(name, "."))
	if name == "" {
		return "submission"
	}
	return name
}

// nameAllocator hands out unique names, suffixing repeats with " (n)" before the extension.
type nameAllocator struct {
	used map[string]bool
}

func newNameAllocator() *nameAllocator {
	return &nameAllocator{used: make(map[string]bool)}
}

func (a *nameAllocator) allocate(name string) string {
	if !a.used[name] {
		a.used[name] = true
		return name
	}
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, n, ext)
		if !a.used[candidate] {
			a.used[candidate] = true
			return candidate
		}
	}
}
