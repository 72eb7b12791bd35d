package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Response holds a submitted value. Scalar kinds use Text, mrq uses Choices.
type Response struct {
	Text    string
	Choices []string
	Multi   bool
}

func TextResponse(text string) *Response {
	return &Response{Text: text}
}

func ChoicesResponse(choices ...string) *Response {
	return &Response{Choices: append([]string{}, choices...), Multi: true}
}

// EmptyResponse returns the blank response for a field type, or nil for kinds without one.
func EmptyResponse(t FieldType) *Response {
	switch {
	case !t.HasResponse():
		return nil
	case t.IsMulti():
		return ChoicesResponse()
	default:
		return TextResponse("")
	}
}

func (r *Response) IsEmpty() bool {
	if r == nil {
		return true
	}
	if r.Multi {
		return len(r.Choices) == 0
	}
	return strings.TrimSpace(r.Text) == ""
}

func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	c := *r
	c.Choices = append([]string(nil), r.Choices...)
	if r.Multi && c.Choices == nil {
		c.Choices = []string{}
	}
	return &c
}

func (r Response) MarshalJSON() ([]byte, error) {
	if r.Multi {
		if r.Choices == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(r.Choices)
	}
	return json.Marshal(r.Text)
}

func (r *Response) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty response")
	}
	switch data[0] {
	case '[':
		var choices []string
		if err := json.Unmarshal(data, &choices); err != nil {
			return fmt.Errorf("response list must contain strings: %w", err)
		}
		*r = Response{Choices: choices, Multi: true}
		if r.Choices == nil {
			r.Choices = []string{}
		}
	case '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*r = Response{Text: text}
	default:
		// numeric answers posted as JSON numbers keep their literal text
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("response must be a string, number or list of strings")
		}
		*r = Response{Text: n.String()}
	}
	return nil
}

// FormResponseField is a template field together with the member's answer.
type FormResponseField struct {
	FormField
	Response *Response `json:"response,omitempty"`
}

// NewResponseField builds the blank response shell for a template field.
func NewResponseField(field FormField) FormResponseField {
	return FormResponseField{
		FormField: field.Normalized(),
		Response:  EmptyResponse(field.Type),
	}
}

func (f FormResponseField) MarshalJSON() ([]byte, error) {
	fieldJSON, err := json.Marshal(f.FormField)
	if err != nil {
		return nil, err
	}
	if !f.Type.HasResponse() {
		return fieldJSON, nil
	}

	resp := f.Response
	if resp == nil {
		resp = EmptyResponse(f.Type)
	}
	respJSON, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(fieldJSON[:len(fieldJSON)-1])
	buf.WriteString(`,"response":`)
	buf.Write(respJSON)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (f *FormResponseField) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("response field must be an object: %w", err)
	}
	respRaw, hasResponse := raw["response"]
	delete(raw, "response")

	rest, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	if err := f.FormField.UnmarshalJSON(rest); err != nil {
		return err
	}

	f.Response = nil
	if hasResponse && !bytes.Equal(bytes.TrimSpace(respRaw), []byte("null")) {
		var resp Response
		if err := json.Unmarshal(respRaw, &resp); err != nil {
			return err
		}
		f.Response = &resp
	}
	return nil
}

// Value renders the response as a single string, joining multi-choice answers with " & ".
func (f FormResponseField) Value() string {
	if f.Response == nil {
		return ""
	}
	if f.Response.Multi {
		return strings.Join(f.Response.Choices, " & ")
	}
	return f.Response.Text
}
