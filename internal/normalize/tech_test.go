package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTechNameKoreanTable(t *testing.T) {
	t.Parallel()

	got := TechName("자바스크립트")
	assert.Equal(t, "JavaScript", got.Normalized)
	assert.Equal(t, CategoryLanguage, got.Category)
	assert.True(t, got.WasNormalized)
}

func TestTechNameEnglishVariants(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"nextjs":  "Next.js",
		"JS":      "JavaScript",
		"node":    "Node.js",
		"Spring":  "Spring Boot",
		"k8s":     "Kubernetes",
		"golang":  "Go",
		"postgres": "PostgreSQL",
	}
	for raw, want := range cases {
		got := TechName(raw)
		assert.Equal(t, want, got.Normalized, "TechName(%q)", raw)
		assert.True(t, got.WasNormalized, "TechName(%q)", raw)
	}
}

func TestTechNameCanonicalCaseInsensitive(t *testing.T) {
	t.Parallel()

	got := TechName("docker")
	assert.Equal(t, "Docker", got.Normalized)
	assert.True(t, got.WasNormalized)

	exact := TechName("Docker")
	assert.Equal(t, "Docker", exact.Normalized)
	assert.False(t, exact.WasNormalized)
}

func TestTechNameUnknownFallsBackToOther(t *testing.T) {
	t.Parallel()

	got := TechName("  Unknown123  ")
	assert.Equal(t, "Unknown123", got.Normalized)
	assert.Equal(t, CategoryOther, got.Category)
	assert.False(t, got.WasNormalized)
}

func TestTechNameIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"자바스크립트", "nextjs", "spring", "docker", "Unknown123", "파이토치"}
	for _, raw := range inputs {
		first := TechName(raw)
		second := TechName(first.Normalized)
		assert.Equal(t, first.Normalized, second.Normalized, "re-normalizing %q", raw)
		assert.False(t, second.WasNormalized, "canonical %q must not re-normalize", first.Normalized)
	}
}

func TestTechStackDedup(t *testing.T) {
	t.Parallel()

	got := TechStack([]string{"JS", "js", "JavaScript"})
	require.Len(t, got, 1)
	assert.Equal(t, "JavaScript", got[0].Normalized)
}

func TestTechStackPreservesOrder(t *testing.T) {
	t.Parallel()

	got := TechStack([]string{"타입스크립트", "react", "ts", "Kafka"})
	require.Len(t, got, 3)
	assert.Equal(t, "TypeScript", got[0].Normalized)
	assert.Equal(t, "React", got[1].Normalized)
	assert.Equal(t, "Kafka", got[2].Normalized)
}

func TestScanTechKeywords(t *testing.T) {
	t.Parallel()

	got := ScanTechKeywords("Java 5년 이상, Spring 기반 백엔드 개발 경험")
	names := make([]string, 0, len(got))
	for _, tech := range got {
		names = append(names, tech.Normalized)
	}
	assert.Equal(t, []string{"Java", "Spring Boot"}, names)
}

func TestScanTechKeywordsWordBoundaries(t *testing.T) {
	t.Parallel()

	got := ScanTechKeywords("JavaScript 및 TypeScript 경험자 우대")
	for _, tech := range got {
		assert.NotEqual(t, "Java", tech.Normalized, "Java must not fire inside JavaScript")
	}
}

func TestScanTechKeywordsKorean(t *testing.T) {
	t.Parallel()

	got := ScanTechKeywords("도커와 쿠버네티스를 이용한 배포 경험")
	require.Len(t, got, 2)
	assert.Equal(t, "Docker", got[0].Normalized)
	assert.Equal(t, "Kubernetes", got[1].Normalized)
}

func TestScanTechKeywordsEmpty(t *testing.T) {
	t.Parallel()

	assert.Nil(t, ScanTechKeywords("   "))
	assert.Empty(t, ScanTechKeywords("특별한 기술 요구사항 없음"))
}
