package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/interviewbot/jobscout/internal/ingest"
)

// EmploymentType maps Korean and English employment-type strings onto the
// canonical Korean forms. Exact synonym matches win over substring
// matches; unmatched input passes through trimmed.
func EmploymentType(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return trimmed
	}
	lower := strings.ToLower(trimmed)

	for _, entry := range employmentTypeTable {
		for _, syn := range entry.synonyms {
			if lower == strings.ToLower(syn) {
				return entry.canonical
			}
		}
	}
	for _, entry := range employmentTypeTable {
		for _, syn := range entry.synonyms {
			if strings.Contains(lower, strings.ToLower(syn)) {
				return entry.canonical
			}
		}
	}
	return trimmed
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	// A neighborhood token ends in 동/리/읍/면; everything from it to the end
	// of the string (street and building numbers) is dropped.
	neighborhoodSuffix = regexp.MustCompile(`\s\S{1,10}[동리읍면]($|\s.*$)`)
)

// Location collapses formal administrative names to short forms and strips
// neighborhood-level detail, keeping city and district.
func Location(raw string) string {
	trimmed := whitespaceRun.ReplaceAllString(strings.TrimSpace(raw), " ")
	if trimmed == "" {
		return trimmed
	}
	for formal, short := range locationShortForms {
		if strings.HasPrefix(trimmed, formal) {
			trimmed = short + strings.TrimPrefix(trimmed, formal)
			break
		}
	}
	trimmed = neighborhoodSuffix.ReplaceAllString(trimmed, "")
	return strings.TrimSpace(trimmed)
}

var (
	canonicalSalaryRange  = regexp.MustCompile(`^\d{1,3}(?:,\d{3})*~\d{1,3}(?:,\d{3})*만원$`)
	canonicalSalarySingle = regexp.MustCompile(`^\d{1,3}(?:,\d{3})*만원$`)
	salaryNumber          = regexp.MustCompile(`\d[\d,]*`)
)

// SalaryRange reformats numeric salary strings to the N,NNN~N,NNN만원 form
// and collapses "negotiable" phrasings to 협의. Values already canonical
// and anything unrecognized pass through unchanged.
func SalaryRange(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return trimmed
	}
	if canonicalSalaryRange.MatchString(trimmed) || canonicalSalarySingle.MatchString(trimmed) {
		return trimmed
	}
	lower := strings.ToLower(trimmed)
	for _, kw := range negotiableSalaryKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return "협의"
		}
	}

	numbers := salaryNumber.FindAllString(trimmed, -1)
	switch len(numbers) {
	case 1:
		n, err := parseSalaryNumber(numbers[0])
		if err != nil {
			return trimmed
		}
		return fmt.Sprintf("%s만원", thousands(n))
	case 2:
		low, err1 := parseSalaryNumber(numbers[0])
		high, err2 := parseSalaryNumber(numbers[1])
		if err1 != nil || err2 != nil {
			return trimmed
		}
		return fmt.Sprintf("%s~%s만원", thousands(low), thousands(high))
	default:
		return trimmed
	}
}

func parseSalaryNumber(s string) (int, error) {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0, fmt.Errorf("parse salary number %q: %w", s, err)
	}
	return n, nil
}

func thousands(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

var (
	isoDeadline     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dottedDeadline  = regexp.MustCompile(`^(\d{4})[./](\d{1,2})[./](\d{1,2})$`)
	monthDayOnly    = regexp.MustCompile(`^(\d{1,2})[./](\d{1,2})$`)
)

// Deadline normalizes deadline strings to ISO dates or 상시채용. Bare MM/DD
// values are assumed to fall in the current year. Unrecognized input
// passes through trimmed.
func Deadline(raw string) string {
	return deadlineAt(raw, time.Now())
}

func deadlineAt(raw string, now time.Time) string {
	trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "~"))
	if trimmed == "" {
		return trimmed
	}
	for _, kw := range ongoingDeadlineKeywords {
		if strings.Contains(trimmed, kw) {
			return "상시채용"
		}
	}
	if isoDeadline.MatchString(trimmed) {
		return trimmed
	}
	if m := dottedDeadline.FindStringSubmatch(trimmed); m != nil {
		return fmt.Sprintf("%s-%02d-%02d", m[1], mustAtoi(m[2]), mustAtoi(m[3]))
	}
	if m := monthDayOnly.FindStringSubmatch(trimmed); m != nil {
		return fmt.Sprintf("%d-%02d-%02d", now.Year(), mustAtoi(m[1]), mustAtoi(m[2]))
	}
	return trimmed
}

// mustAtoi is only called on regexp-captured digit runs.
func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

var employeeCount = regexp.MustCompile(`\d[\d,]*`)

// CompanySize buckets employee counts into the standard Korean size names,
// preserving the raw count in the label. Inputs already carrying a size
// name, or with neither a count nor a known keyword, pass through.
func CompanySize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return trimmed
	}
	if m := employeeCount.FindAllString(trimmed, -1); len(m) > 0 {
		// For a range, bucket on the upper bound.
		n, err := parseSalaryNumber(m[len(m)-1])
		if err == nil && n > 0 {
			return fmt.Sprintf("%s(%s명)", sizeBucket(n), thousands(n))
		}
	}
	for _, kw := range companySizeKeywords {
		if strings.Contains(trimmed, kw) {
			return kw
		}
	}
	return trimmed
}

func sizeBucket(employees int) string {
	switch {
	case employees <= 50:
		return sizeStartup
	case employees <= 200:
		return sizeSmall
	case employees <= 1000:
		return sizeMedium
	default:
		return sizeLarge
	}
}

// Posting normalizes every scalar field of a posting. TechStack is left
// untouched: callers normalize it separately with TechStack when they need
// canonical names, since downstream consumers want the Tech metadata, not
// bare strings.
func Posting(p ingest.JobPosting) ingest.JobPosting {
	p.Company = strings.TrimSpace(p.Company)
	p.Position = strings.TrimSpace(p.Position)
	p.EmploymentType = EmploymentType(p.EmploymentType)
	p.Location = Location(p.Location)
	p.SalaryRange = SalaryRange(p.SalaryRange)
	p.Deadline = Deadline(p.Deadline)
	p.CompanySize = CompanySize(p.CompanySize)
	return p
}
