// Package editorctx turns the editor state passed on the command line into
// opencode file references and expands @placeholders in prompts.
package editorctx

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Placeholder names understood by Expand.
const (
	This      = "@this"
	Buffer    = "@buffer"
	Selection = "@selection"
	Diff      = "@diff"
)

// Context is the editor state at the moment the dialog was opened.
// Line and column numbers are 1-based; zero means unset.
type Context struct {
	File           string
	Line           int
	Column         int
	Selection      string
	HasSelection   bool
	SelectionStart int
	SelectionEnd   int
	Language       string
	Dir            string

	// DiffFunc produces the working tree diff. Defaults to git.
	DiffFunc func(ctx context.Context, dir string) (string, error)
}

// ReadSelection loads the selection text written by the editor and removes
// the file. A missing path yields no selection.
func (c *Context) ReadSelection(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	_ = os.Remove(path)
	if err != nil {
		return err
	}
	c.Selection = string(data)
	c.HasSelection = true
	return nil
}

// Location formats the cursor or selection range: "@file L10-L20",
// "@file L42:C10", "@file L42" or "@file".
func (c *Context) Location() (string, bool) {
	if c.File == "" {
		return "", false
	}
	ref := "@" + c.File
	switch {
	case c.SelectionStart > 0 && c.SelectionEnd > 0:
		return ref + " L" + strconv.Itoa(c.SelectionStart) + "-L" + strconv.Itoa(c.SelectionEnd), true
	case c.Line > 0 && c.Column > 0:
		return ref + " L" + strconv.Itoa(c.Line) + ":C" + strconv.Itoa(c.Column), true
	case c.Line > 0:
		return ref + " L" + strconv.Itoa(c.Line), true
	}
	return ref, true
}

// This is the value of @this.
func (c *Context) This() (string, bool) {
	return c.Location()
}

// Buffer is the value of @buffer.
func (c *Context) Buffer() (string, bool) {
	if c.File == "" {
		return "", false
	}
	return "@" + c.File, true
}

// SelectionBlock is the value of @selection: the location followed by the
// selected text in a fenced block.
func (c *Context) SelectionBlock() (string, bool) {
	if !c.HasSelection {
		return "", false
	}
	loc, ok := c.Location()
	if !ok {
		return "", false
	}
	return loc + "\n```\n" + c.Selection + "\n```", true
}

// WorkingDiff is the value of @diff. An empty diff counts as unresolved.
func (c *Context) WorkingDiff(ctx context.Context) (string, bool) {
	run := c.DiffFunc
	if run == nil {
		run = gitDiff
	}
	out, err := run(ctx, c.Dir)
	if err != nil || out == "" {
		return "", false
	}
	return out, true
}

// Expand replaces every resolvable placeholder in text. Unresolved ones are
// left as typed. The diff is only computed when @diff appears.
func (c *Context) Expand(ctx context.Context, text string) string {
	if v, ok := c.This(); ok {
		text = strings.ReplaceAll(text, This, v)
	}
	if v, ok := c.Buffer(); ok {
		text = strings.ReplaceAll(text, Buffer, v)
	}
	if v, ok := c.SelectionBlock(); ok {
		text = strings.ReplaceAll(text, Selection, v)
	}
	if strings.Contains(text, Diff) {
		if v, ok := c.WorkingDiff(ctx); ok {
			text = strings.ReplaceAll(text, Diff, v)
		}
	}
	return text
}

// Placeholder is a completion candidate with a preview of its value.
type Placeholder struct {
	Name  string
	Value string
}

const unresolved = "(none)"

// Placeholders lists the placeholders for autocompletion. The diff is
// previewed by name only so opening the dialog never shells out.
func (c *Context) Placeholders() []Placeholder {
	preview := func(v string, ok bool) string {
		if !ok {
			return unresolved
		}
		if i := strings.IndexByte(v, '\n'); i >= 0 {
			return v[:i] + " ..."
		}
		return v
	}
	return []Placeholder{
		{Name: This, Value: preview(c.This())},
		{Name: Buffer, Value: preview(c.Buffer())},
		{Name: Selection, Value: preview(c.SelectionBlock())},
		{Name: Diff, Value: "git diff of the working tree"},
	}
}

func gitDiff(ctx context.Context, dir string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "--no-pager", "diff")
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return out.String(), nil
}
