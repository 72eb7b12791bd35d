package export

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/SAP-F-2025/course-service/internal/models"
)

const (
	TimeLayout     = "2006-01-02 15:04:05"
	DeletedMarker  = "[deleted]"
	CommentDivider = "\n----------\n"
)

var baseHeaders = []string{
	"Submission ID", "Name", "Description", "Group", "Draft",
	"Created At", "Updated At", "Created By", "Last Edited By",
}

// Header returns the column titles: identity columns, then a response and a
// comments column for every field.
func (g *Group) Header() []string {
	header := append([]string{}, baseHeaders...)
	for _, f := range g.Key.Fields {
		header = append(header, f.Name, f.Name+" Comments")
	}
	return header
}

// Rows renders one row per submission.
func (g *Group) Rows(loc *time.Location) [][]string {
	if loc == nil {
		loc = time.UTC
	}
	rows := make([][]string, 0, len(g.Items))
	for _, item := range g.Items {
		rows = append(rows, submissionRow(item, loc))
	}
	return rows
}

func submissionRow(item models.SubmissionWithComments, loc *time.Location) []string {
	s := item.Submission
	group := ""
	if s.Group != nil {
		group = s.Group.Name
	} else if s.GroupID != nil {
		group = strconv.FormatUint(uint64(*s.GroupID), 10)
	}

	row := []string{
		strconv.FormatUint(uint64(s.ID), 10),
		s.Name,
		s.Description,
		group,
		strconv.FormatBool(s.IsDraft),
		s.CreatedAt.In(loc).Format(TimeLayout),
		s.UpdatedAt.In(loc).Format(TimeLayout),
		userName(s.CreatedBy, s.CreatedByID),
		userName(s.EditedBy, s.EditedByID),
	}

	byField := commentsByField(item.Comments)
	for i, f := range s.FormResponseData {
		row = append(row, f.Value(), FormatComments(byField[i], loc))
	}
	return row
}

func userName(u *models.User, id string) string {
	if u != nil {
		return u.DisplayName()
	}
	return id
}

func commentsByField(comments []*models.Comment) map[int][]*models.Comment {
	out := make(map[int][]*models.Comment)
	for _, c := range comments {
		if c == nil {
			continue
		}
		out[c.FieldIndex] = append(out[c.FieldIndex], c)
	}
	for _, list := range out {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		})
	}
	return out
}

// FormatComments serialises a field's comments as commenter, role, content and
// timestamp blocks separated by CommentDivider. No comments yields an empty cell.
func FormatComments(comments []*models.Comment, loc *time.Location) string {
	if len(comments) == 0 {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	blocks := make([]string, 0, len(comments))
	for _, c := range comments {
		content := c.Content
		if c.IsDeleted {
			content = DeletedMarker
		}
		blocks = append(blocks, strings.Join([]string{
			userName(c.Commenter, c.CommenterID),
			string(c.CommenterRole),
			content,
			c.CreatedAt.In(loc).Format(TimeLayout),
		}, " — "))
	}
	return strings.Join(blocks, CommentDivider)
}

// WriteCSV writes the group as a CSV file.
func WriteCSV(w io.Writer, g *Group, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(g.Header()); err != nil {
		return err
	}
	if err := cw.WriteAll(g.Rows(loc)); err != nil {
		return err
	}
	return cw.Error()
}

// WriteZip writes one CSV entry per group into a ZIP archive.
func WriteZip(w io.Writer, groups []*Group, loc *time.Location) error {
	zw := zip.NewWriter(w)
	for _, g := range groups {
		entry, err := zw.CreateHeader(&zip.FileHeader{
			Name:     g.Filename,
			Method:   zip.Deflate,
			Modified: time.Now(),
		})
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", g.Filename, err)
		}
		if err := WriteCSV(entry, g, loc); err != nil {
			return fmt.Errorf("failed to write %s: %w", g.Filename, err)
		}
	}
	return zw.Close()
}
