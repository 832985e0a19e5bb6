package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/interviewbot/jobscout/internal/ingest"
)

func TestEmploymentType(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"정규직":        "정규직",
		"Full-Time":  "정규직",
		"permanent":  "정규직",
		"계약직 (1년)":   "계약직",
		"인턴십":        "인턴",
		"Internship": "인턴",
		"프리랜서":       "프리랜서",
		"주3일 근무":     "주3일 근무",
		"  ":         "",
	}
	for raw, want := range cases {
		assert.Equal(t, want, EmploymentType(raw), "EmploymentType(%q)", raw)
	}
}

func TestLocation(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"서울특별시 강남구 역삼동 123-45": "서울 강남구",
		"서울특별시 강남구":            "서울 강남구",
		"경기도 성남시 분당구":          "경기 성남시 분당구",
		"부산광역시 해운대구 우동 1500":   "부산 해운대구",
		"서울 강남구":               "서울 강남구",
		"재택근무":                 "재택근무",
	}
	for raw, want := range cases {
		assert.Equal(t, want, Location(raw), "Location(%q)", raw)
	}
}

func TestSalaryRange(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"5,000-7,000만원": "5,000~7,000만원",
		"5,000~7,000만원": "5,000~7,000만원",
		"5000 ~ 7000":   "5,000~7,000만원",
		"협의":            "협의",
		"면접 후 결정":       "협의",
		"회사내규에 따름":      "협의",
		"Negotiable":    "협의",
		"4,000만원":       "4,000만원",
		"업계 최고 대우":      "업계 최고 대우",
	}
	for raw, want := range cases {
		assert.Equal(t, want, SalaryRange(raw), "SalaryRange(%q)", raw)
	}
}

func TestDeadline(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	cases := map[string]string{
		"2026.03.15": "2026-03-15",
		"2026/3/5":   "2026-03-05",
		"2026-03-15": "2026-03-15",
		"상시채용":       "상시채용",
		"상시":         "상시채용",
		"수시":         "상시채용",
		"채용시 마감":     "상시채용",
		"03/15":      "2026-03-15",
		"9.30":       "2026-09-30",
		"~2026.03.15": "2026-03-15",
		"미정":         "미정",
	}
	for raw, want := range cases {
		assert.Equal(t, want, deadlineAt(raw, now), "Deadline(%q)", raw)
	}
}

func TestCompanySize(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"30명":          "스타트업(30명)",
		"120명":         "중소기업(120명)",
		"50~200명":      "중소기업(200명)",
		"850명":         "중견기업(850명)",
		"12,000명":      "대기업(12,000명)",
		"스타트업":         "스타트업",
		"대기업 계열":       "대기업",
		"사원수 비공개":      "사원수 비공개",
	}
	for raw, want := range cases {
		assert.Equal(t, want, CompanySize(raw), "CompanySize(%q)", raw)
	}
}

// Re-normalizing any canonical output must be a no-op.
func TestFieldNormalizersIdempotent(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"Full-Time", "계약직", "알 수 없음"} {
		once := EmploymentType(raw)
		assert.Equal(t, once, EmploymentType(once), "EmploymentType(%q)", raw)
	}
	for _, raw := range []string{"서울특별시 강남구 역삼동 123-45", "경기도 성남시 분당구", "재택"} {
		once := Location(raw)
		assert.Equal(t, once, Location(once), "Location(%q)", raw)
	}
	for _, raw := range []string{"5,000-7,000만원", "면접 후 결정", "4000", "업계 최고"} {
		once := SalaryRange(raw)
		assert.Equal(t, once, SalaryRange(once), "SalaryRange(%q)", raw)
	}
	for _, raw := range []string{"2026.03.15", "상시", "미정"} {
		once := Deadline(raw)
		assert.Equal(t, once, Deadline(once), "Deadline(%q)", raw)
	}
	for _, raw := range []string{"120명", "스타트업", "비공개"} {
		once := CompanySize(raw)
		assert.Equal(t, once, CompanySize(once), "CompanySize(%q)", raw)
	}
}

func TestPostingNormalizesFieldsIndependently(t *testing.T) {
	t.Parallel()

	in := ingest.JobPosting{
		Company:        "  토스  ",
		Position:       "백엔드 엔지니어",
		TechStack:      []string{"JS", "js"},
		SalaryRange:    "면접 후 결정",
		Location:       "서울특별시 강남구 역삼동 123",
		EmploymentType: "Full-Time",
		Deadline:       "상시",
		CompanySize:    "300명",
	}
	got := Posting(in)

	assert.Equal(t, "토스", got.Company)
	assert.Equal(t, "협의", got.SalaryRange)
	assert.Equal(t, "서울 강남구", got.Location)
	assert.Equal(t, "정규직", got.EmploymentType)
	assert.Equal(t, "상시채용", got.Deadline)
	assert.Equal(t, "중견기업(300명)", got.CompanySize)
	// TechStack is normalized by TechStack(), not Posting().
	assert.Equal(t, []string{"JS", "js"}, got.TechStack)
}
