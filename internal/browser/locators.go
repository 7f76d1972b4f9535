package browser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chromedp/chromedp"
	yaml "go.yaml.in/yaml/v3"
)

type LocatorKind string

const (
	XPath LocatorKind = "xpath"
	CSS   LocatorKind = "css"
)

// Locator identifies one UI element of the WhatsApp Web client.
type Locator struct {
	Name  string
	Kind  LocatorKind
	Value string
}

func (l Locator) String() string {
	return fmt.Sprintf("%s(%s %s)", l.Name, l.Kind, l.Value)
}

func (l Locator) queryOption() chromedp.QueryOption {
	if l.Kind == CSS {
		return chromedp.ByQuery
	}
	return chromedp.BySearch
}

// Locators is the only place selector strings live. The client's markup
// drifts; override the defaults with a YAML file rather than editing code.
type Locators struct {
	ChatList     Locator
	MessageInput Locator
	SendButton   Locator
}

func DefaultLocators() Locators {
	return Locators{
		ChatList:     Locator{Name: "chat_list", Kind: XPath, Value: `//div[@aria-label="Chat list"]`},
		MessageInput: Locator{Name: "message_input", Kind: XPath, Value: `//div[@contenteditable="true"][@data-tab="10"]`},
		SendButton:   Locator{Name: "send_button", Kind: XPath, Value: `//span[@data-icon="send"]`},
	}
}

type locatorOverride struct {
	Kind  string `yaml:"kind"`
	Value string `yaml:"value"`
}

type locatorFile struct {
	ChatList     *locatorOverride `yaml:"chat_list"`
	MessageInput *locatorOverride `yaml:"message_input"`
	SendButton   *locatorOverride `yaml:"send_button"`
}

// LoadLocators returns the defaults with any entries from path applied.
// An empty path yields the defaults unchanged.
func LoadLocators(path string) (Locators, error) {
	locs := DefaultLocators()
	if path == "" {
		return locs, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return locs, fmt.Errorf("read locators: %w", err)
	}
	return ParseLocators(data)
}

func ParseLocators(data []byte) (Locators, error) {
	locs := DefaultLocators()
	var f locatorFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return locs, fmt.Errorf("parse locators: %w", err)
	}
	apply(&locs.ChatList, f.ChatList)
	apply(&locs.MessageInput, f.MessageInput)
	apply(&locs.SendButton, f.SendButton)
	return locs, locs.Validate()
}

func apply(dst *Locator, o *locatorOverride) {
	if o == nil {
		return
	}
	if o.Kind != "" {
		dst.Kind = LocatorKind(strings.ToLower(strings.TrimSpace(o.Kind)))
	}
	if o.Value != "" {
		dst.Value = o.Value
	}
}

func (l Locators) Validate() error {
	var errs []error
	for _, loc := range []Locator{l.ChatList, l.MessageInput, l.SendButton} {
		switch {
		case strings.TrimSpace(loc.Value) == "":
			errs = append(errs, fmt.Errorf("locator %s: empty value", loc.Name))
		case loc.Kind != XPath && loc.Kind != CSS:
			errs = append(errs, fmt.Errorf("locator %s: unknown kind %q", loc.Name, loc.Kind))
		}
	}
	return errors.Join(errs...)
}
