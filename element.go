package remote

import (
	"encoding/json"
	"fmt"
)

// w3cElementKey is the key W3C servers use for element references.
const w3cElementKey = "element-6066-11e4-a52e-4f735466cecf"

// Element is a reference to a DOM element, valid within the session of the
// Bridge that found it.
type Element struct {
	bridge *Bridge
	id     string
}

func (b *Bridge) element(id string) *Element {
	return &Element{bridge: b, id: id}
}

type elementRef struct {
	Element string `json:"ELEMENT"`
	W3C     string `json:"element-6066-11e4-a52e-4f735466cecf"`
}

func (r elementRef) id() string {
	if r.Element != "" {
		return r.Element
	}
	return r.W3C
}

func elementID(m map[string]interface{}) (string, bool) {
	if id, ok := m["ELEMENT"].(string); ok {
		return id, true
	}
	id, ok := m[w3cElementKey].(string)
	return id, ok
}

// ID returns the server-assigned id of the element.
func (e *Element) ID() string {
	return e.id
}

func (e *Element) String() string {
	return fmt.Sprintf("Element(%s)", e.id)
}

func (e *Element) params(kv ...string) map[string]string {
	p := map[string]string{"id": e.id}
	for i := 0; i+1 < len(kv); i += 2 {
		p[kv[i]] = kv[i+1]
	}
	return p
}

// Click clicks on the element.
func (e *Element) Click() error {
	return e.bridge.voidCommand(CmdClickElement, e.params(), nil)
}

// Submit submits the form the element belongs to.
func (e *Element) Submit() error {
	return e.bridge.voidCommand(CmdSubmitElement, e.params(), nil)
}

// Clear clears the element.
func (e *Element) Clear() error {
	return e.bridge.voidCommand(CmdClearElement, e.params(), nil)
}

// Toggle toggles a checkbox or multi-select option and returns whether it is
// now selected.
func (e *Element) Toggle() (bool, error) {
	var selected bool
	err := e.bridge.decodeCommand(CmdToggleElement, e.params(), nil, &selected)
	return selected, err
}

// Select selects an option, checkbox or radio button.
func (e *Element) Select() error {
	return e.bridge.voidCommand(CmdSetElementSelected, e.params(), nil)
}

// SendKeys types into the element. Keys such as EnterKey may be part of the
// string.
func (e *Element) SendKeys(keys string) error {
	return e.bridge.voidCommand(CmdSendKeysToElement, e.params(), processKeyString(keys))
}

func processKeyString(keys string) interface{} {
	chars := make([]string, 0, len(keys))
	for _, c := range keys {
		chars = append(chars, string(c))
	}
	return map[string][]string{"value": chars}
}

// TagName returns the element's tag name.
func (e *Element) TagName() (string, error) {
	return e.bridge.stringCommand(CmdGetElementTagName, e.params())
}

// Text returns the visible text of the element.
func (e *Element) Text() (string, error) {
	return e.bridge.stringCommand(CmdGetElementText, e.params())
}

// Value returns the value of the element's "value" property.
func (e *Element) Value() (string, error) {
	return e.bridge.stringCommand(CmdGetElementValue, e.params())
}

// Attribute returns the named attribute of the element. An attribute that is
// not set yields the empty string.
func (e *Element) Attribute(name string) (string, error) {
	return e.bridge.stringCommand(CmdGetElementAttribute, e.params("name", name))
}

// IsSelected reports whether the element is selected.
func (e *Element) IsSelected() (bool, error) {
	return e.bridge.boolCommand(CmdIsElementSelected, e.params())
}

// IsEnabled reports whether the element is enabled.
func (e *Element) IsEnabled() (bool, error) {
	return e.bridge.boolCommand(CmdIsElementEnabled, e.params())
}

// IsDisplayed reports whether the element is shown.
func (e *Element) IsDisplayed() (bool, error) {
	return e.bridge.boolCommand(CmdIsElementDisplayed, e.params())
}

func (e *Element) point(name CommandName) (*Point, error) {
	p := new(Point)
	if err := e.bridge.decodeCommand(name, e.params(), nil, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Location returns the element's location on the page.
func (e *Element) Location() (*Point, error) {
	return e.point(CmdGetElementLocation)
}

// LocationInView returns the element's location once it has been scrolled
// into view.
func (e *Element) LocationInView() (*Point, error) {
	return e.point(CmdGetElementLocationInView)
}

// Size returns the element's size.
func (e *Element) Size() (*Size, error) {
	s := new(Size)
	if err := e.bridge.decodeCommand(CmdGetElementSize, e.params(), nil, s); err != nil {
		return nil, err
	}
	return s, nil
}

// CSSProperty returns the computed value of the named CSS property.
func (e *Element) CSSProperty(name string) (string, error) {
	return e.bridge.stringCommand(CmdGetElementValueOfCSSProperty, e.params("propertyName", name))
}

// SetCSSProperty sets the named CSS property of the element.
func (e *Element) SetCSSProperty(name, value string) error {
	return e.bridge.voidCommand(CmdSetElementValueOfCSSProperty, e.params("propertyName", name), map[string]string{"value": value})
}

// Hover moves the mouse over the element.
func (e *Element) Hover() error {
	return e.bridge.voidCommand(CmdHoverOverElement, e.params(), nil)
}

// Drag drags the element by the given offset.
func (e *Element) Drag(dx, dy int) error {
	return e.bridge.voidCommand(CmdDragElement, e.params(), map[string]int{"x": dx, "y": dy})
}

// FindElement finds exactly one element below this one.
func (e *Element) FindElement(by By, value string) (*Element, error) {
	return e.bridge.findElement(e, by, value)
}

// FindElements finds all matching elements below this one.
func (e *Element) FindElements(by By, value string) ([]*Element, error) {
	return e.bridge.findElements(e, by, value)
}

// Equal reports whether e and other refer to the same DOM element. Identical
// ids are equal without asking the server.
func (e *Element) Equal(other *Element) (bool, error) {
	if err := e.bridge.owns(CmdElementEquals, other); err != nil {
		return false, err
	}
	if e.id == other.id {
		return true, nil
	}
	return e.bridge.boolCommand(CmdElementEquals, e.params("other", other.id))
}

// MarshalJSON encodes the element as a reference understood by both legacy
// and W3C servers.
func (e *Element) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"ELEMENT":     e.id,
		w3cElementKey: e.id,
	})
}
