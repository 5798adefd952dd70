package remote

import (
	"fmt"
	"strconv"
	"strings"
)

// SelectElement wraps an Element for a <select> dropdown.
type SelectElement struct {
	element *Element
	isMulti bool
}

// NewSelect wraps el, which must be a <select> element.
func NewSelect(el *Element) (*SelectElement, error) {
	tagName, err := el.TagName()
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(tagName, "select") {
		return nil, fmt.Errorf(`element should have been "select" but was %q`, tagName)
	}

	mult, err := el.Attribute("multiple")
	if err != nil {
		return nil, err
	}
	return &SelectElement{
		element: el,
		isMulti: mult != "" && !strings.EqualFold(mult, "false"),
	}, nil
}

// Element returns the wrapped element.
func (s *SelectElement) Element() *Element {
	return s.element
}

// IsMultiple reports whether the select allows selecting more than one option
// at the same time, as told by its "multiple" attribute.
func (s *SelectElement) IsMultiple() bool {
	return s.isMulti
}

// Options returns all of the options of the select.
func (s *SelectElement) Options() ([]*Element, error) {
	return s.element.FindElements(ByTagName, "option")
}

// SelectedOptions returns the options that are selected.
func (s *SelectElement) SelectedOptions() ([]*Element, error) {
	opts, err := s.Options()
	if err != nil {
		return nil, err
	}
	var selected []*Element
	for _, o := range opts {
		ok, err := o.IsSelected()
		if err != nil {
			return nil, err
		}
		if ok {
			selected = append(selected, o)
		}
	}
	return selected, nil
}

// FirstSelectedOption returns the first selected option.
func (s *SelectElement) FirstSelectedOption() (*Element, error) {
	opts, err := s.SelectedOptions()
	if err != nil {
		return nil, err
	}
	if len(opts) == 0 {
		return nil, &Error{Kind: ErrNoSuchElement, Message: "no option is selected"}
	}
	return opts[0], nil
}

// SelectByVisibleText selects all options that display text matching the
// argument. That is, when given "Bar" this would select an option like:
//
//	<option value="foo">Bar</option>
func (s *SelectElement) SelectByVisibleText(text string) error {
	options, err := s.element.FindElements(ByXPATH, `.//option[normalize-space(.) = `+xpathLiteral(text)+`]`)
	if err != nil {
		return err
	}
	for _, option := range options {
		if err := s.setSelected(option, true); err != nil {
			return err
		}
		if !s.isMulti {
			return nil
		}
	}

	matched := len(options) > 0
	if !matched && strings.Contains(text, " ") {
		var candidates []*Element
		if sub := longestWord(text); sub == "" {
			// Only spaces, every option is a candidate.
			candidates, err = s.Options()
		} else {
			candidates, err = s.element.FindElements(ByXPATH, `.//option[contains(., `+xpathLiteral(sub)+`)]`)
		}
		if err != nil {
			return err
		}

		trimmed := strings.TrimSpace(text)
		for _, option := range candidates {
			o, err := option.Text()
			if err != nil {
				return err
			}
			if trimmed != strings.TrimSpace(o) {
				continue
			}
			if err := s.setSelected(option, true); err != nil {
				return err
			}
			if !s.isMulti {
				return nil
			}
			matched = true
		}
	}
	if !matched {
		return &Error{Kind: ErrNoSuchElement, Message: "cannot locate option with text: " + text}
	}
	return nil
}

// SelectByIndex selects the option at the given index. This is done by
// examining the "index" property of the options, not merely by counting.
func (s *SelectElement) SelectByIndex(index int) error {
	return s.setSelectedByIndex(index, true)
}

// SelectByValue selects all options that have a value matching the argument.
func (s *SelectElement) SelectByValue(value string) error {
	opts, err := s.findOptionsByValue(value)
	if err != nil {
		return err
	}
	for _, option := range opts {
		if err := s.setSelected(option, true); err != nil {
			return err
		}
		if !s.isMulti {
			return nil
		}
	}
	return nil
}

// DeselectAll clears all selected options. It is only valid for
// multi-selects.
func (s *SelectElement) DeselectAll() error {
	if err := s.checkMulti(); err != nil {
		return err
	}
	opts, err := s.Options()
	if err != nil {
		return err
	}
	return s.deselect(opts)
}

// DeselectByValue deselects all options that have a value matching the
// argument.
func (s *SelectElement) DeselectByValue(value string) error {
	if err := s.checkMulti(); err != nil {
		return err
	}
	opts, err := s.findOptionsByValue(value)
	if err != nil {
		return err
	}
	return s.deselect(opts)
}

// DeselectByIndex deselects the option with the given "index" attribute.
func (s *SelectElement) DeselectByIndex(index int) error {
	if err := s.checkMulti(); err != nil {
		return err
	}
	return s.setSelectedByIndex(index, false)
}

// DeselectByVisibleText deselects all options that display text matching the
// argument.
func (s *SelectElement) DeselectByVisibleText(text string) error {
	if err := s.checkMulti(); err != nil {
		return err
	}
	options, err := s.element.FindElements(ByXPATH, `.//option[normalize-space(.) = `+xpathLiteral(text)+`]`)
	if err != nil {
		return err
	}
	if len(options) == 0 {
		return &Error{Kind: ErrNoSuchElement, Message: "cannot locate option with text: " + text}
	}
	return s.deselect(options)
}

func (s *SelectElement) checkMulti() error {
	if !s.isMulti {
		return &Error{Kind: ErrInvalidElementState, Message: "you may only deselect options of a multi-select"}
	}
	return nil
}

func (s *SelectElement) deselect(opts []*Element) error {
	for _, o := range opts {
		if err := s.setSelected(o, false); err != nil {
			return err
		}
	}
	return nil
}

// xpathLiteral quotes s as an XPath string literal. XPath has no escapes, so
// strings holding both kinds of quotes are built with concat().
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = `"` + p + `"`
	}
	return "concat(" + strings.Join(quoted, `, '"', `) + ")"
}

func longestWord(s string) string {
	result := ""
	for _, t := range strings.Split(s, " ") {
		if len(t) > len(result) {
			result = t
		}
	}
	return result
}

func (s *SelectElement) findOptionsByValue(value string) ([]*Element, error) {
	opts, err := s.element.FindElements(ByXPATH, `.//option[@value = `+xpathLiteral(value)+`]`)
	if err != nil {
		return nil, err
	}
	if len(opts) == 0 {
		return nil, &Error{Kind: ErrNoSuchElement, Message: "cannot locate option with value: " + value}
	}
	return opts, nil
}

func (s *SelectElement) setSelectedByIndex(index int, selected bool) error {
	idx := strconv.Itoa(index)
	opts, err := s.Options()
	if err != nil {
		return err
	}
	for _, o := range opts {
		// "index" is a property of options, not an attribute, so XPath can't
		// match on it.
		v, err := o.Attribute("index")
		if err != nil {
			return err
		}
		if v == idx {
			return s.setSelected(o, selected)
		}
	}
	return &Error{Kind: ErrNoSuchElement, Message: "cannot locate option with index: " + idx}
}

func (s *SelectElement) setSelected(option *Element, selected bool) error {
	sel, err := option.IsSelected()
	if err != nil {
		return err
	}
	if sel != selected {
		return option.Click()
	}
	return nil
}
