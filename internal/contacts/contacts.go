package contacts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

const minPhoneDigits = 10

var ErrMissingColumn = errors.New("missing required column")

// Contact is a validated recipient. Phone holds digits only.
type Contact struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Rejected describes an input row that was skipped.
type Rejected struct {
	Line   int    `json:"line"`
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

// NormalizePhone strips '+' and whitespace and accepts the result only when it
// is all digits and at least ten long.
func NormalizePhone(raw string) (string, bool) {
	phone := strings.Map(func(r rune) rune {
		if r == '+' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	if len(phone) < minPhoneDigits {
		return phone, false
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return phone, false
		}
	}
	return phone, true
}

func LoadCSV(path string, delimiter rune) ([]Contact, []Rejected, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open contacts %s: %w", path, err)
	}
	defer f.Close()
	return ParseCSV(f, delimiter)
}

// ParseCSV reads Phone, Name and Message columns by header name, in any order.
// Rows with an unusable phone are returned as Rejected; they never fail the read.
func ParseCSV(r io.Reader, delimiter rune) ([]Contact, []Rejected, error) {
	reader := csv.NewReader(r)
	if delimiter != 0 {
		reader.Comma = delimiter
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("%w: Phone (empty file)", ErrMissingColumn)
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	cols := indexHeader(header)
	phoneCol, nameCol, msgCol := cols.lookup("phone"), cols.lookup("name"), cols.lookup("message")
	if phoneCol < 0 {
		return nil, nil, fmt.Errorf("%w: Phone", ErrMissingColumn)
	}

	var (
		contacts []Contact
		rejected []Rejected
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				rejected = append(rejected, Rejected{Line: perr.Line, Reason: perr.Err.Error()})
				continue
			}
			return contacts, rejected, fmt.Errorf("read row: %w", err)
		}
		line, _ := reader.FieldPos(0)

		rawPhone := strings.TrimSpace(field(record, phoneCol))
		phone, valid := NormalizePhone(rawPhone)
		if !valid {
			rejected = append(rejected, Rejected{Line: line, Raw: rawPhone, Reason: "invalid phone number"})
			continue
		}
		contacts = append(contacts, Contact{
			Name:    strings.TrimSpace(field(record, nameCol)),
			Phone:   phone,
			Message: strings.TrimSpace(field(record, msgCol)),
		})
	}
	return contacts, rejected, nil
}

type columns map[string]int

func (c columns) lookup(name string) int {
	if i, ok := c[name]; ok {
		return i
	}
	return -1
}

func indexHeader(header []string) columns {
	cols := make(columns, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	return cols
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}
