// Package skillgap compares a user's skill profile against a posting's
// requirements and produces a match score, per-skill gap items, and
// interview topic recommendations. It is a pure function of its inputs:
// no I/O, no shared state.
package skillgap

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/interviewbot/jobscout/internal/ingest"
	"github.com/interviewbot/jobscout/internal/normalize"
)

// Status classifies how well the user covers one tech.
type Status string

// Gap statuses, ordered from best to worst coverage.
const (
	StatusStrong   Status = "strong"
	StatusModerate Status = "moderate"
	StatusWeak     Status = "weak"
	StatusMissing  Status = "missing"
)

// Importance marks whether a tech came from requirements or preferred
// qualifications.
type Importance string

// Importance levels.
const (
	ImportanceRequired  Importance = "required"
	ImportancePreferred Importance = "preferred"
)

// Item is one analyzed tech with the user's standing against it.
type Item struct {
	Skill           string     `json:"skill"`
	Category        string     `json:"category"`
	Status          Status     `json:"status"`
	UserProficiency *int       `json:"user_proficiency"`
	Importance      Importance `json:"importance"`
	Recommendation  string     `json:"recommendation"`
}

// Result is the full skill-gap analysis.
type Result struct {
	MatchScore        int      `json:"match_score"`
	Items             []Item   `json:"items"`
	RecommendedTopics []string `json:"recommended_topics"`
	Summary           string   `json:"summary"`
}

const maxRecommendedTopics = 10

// Analyze builds the gap analysis for one posting. Required techs come
// from the explicit tech stack plus vocabulary scanning of the requirement
// lines; preferred techs come from the preferred qualification lines minus
// anything already required.
func Analyze(userSkills []ingest.Skill, techStack, requirements, preferredQualifications []string) Result {
	profile := buildProfile(userSkills)

	required := collectTechs(techStack, requirements)
	preferred := subtract(collectTechs(nil, preferredQualifications), required)

	items := make([]Item, 0, len(required)+len(preferred))
	for _, tech := range required {
		items = append(items, classify(tech, ImportanceRequired, profile))
	}
	for _, tech := range preferred {
		items = append(items, classify(tech, ImportancePreferred, profile))
	}

	score := matchScore(items)
	return Result{
		MatchScore:        score,
		Items:             items,
		RecommendedTopics: recommendTopics(items),
		Summary:           summarize(score, items, len(required)),
	}
}

func buildProfile(skills []ingest.Skill) map[string]int {
	profile := make(map[string]int, len(skills))
	for _, s := range skills {
		tech := normalize.TechName(s.Name)
		if tech.Normalized == "" {
			continue
		}
		key := strings.ToLower(tech.Normalized)
		// Keep the best self-assessment when a skill appears twice.
		if cur, ok := profile[key]; !ok || s.Proficiency > cur {
			profile[key] = s.Proficiency
		}
	}
	return profile
}

// collectTechs merges an explicit tech stack with techs scanned out of
// free-text lines, deduplicated by canonical name in first-seen order.
func collectTechs(stack []string, lines []string) []normalize.Tech {
	out := normalize.TechStack(stack)
	seen := make(map[string]struct{}, len(out))
	for _, tech := range out {
		seen[strings.ToLower(tech.Normalized)] = struct{}{}
	}
	for _, line := range lines {
		for _, tech := range normalize.ScanTechKeywords(line) {
			key := strings.ToLower(tech.Normalized)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, tech)
		}
	}
	return out
}

func subtract(techs, remove []normalize.Tech) []normalize.Tech {
	removed := make(map[string]struct{}, len(remove))
	for _, tech := range remove {
		removed[strings.ToLower(tech.Normalized)] = struct{}{}
	}
	out := techs[:0]
	for _, tech := range techs {
		if _, dup := removed[strings.ToLower(tech.Normalized)]; !dup {
			out = append(out, tech)
		}
	}
	return out
}

func classify(tech normalize.Tech, importance Importance, profile map[string]int) Item {
	item := Item{
		Skill:      tech.Normalized,
		Category:   tech.Category,
		Importance: importance,
	}
	prof, ok := profile[strings.ToLower(tech.Normalized)]
	if !ok {
		item.Status = StatusMissing
		item.Recommendation = fmt.Sprintf("%s 기초 개념과 핵심 사용법부터 학습하세요.", tech.Normalized)
		return item
	}
	item.UserProficiency = &prof
	switch {
	case prof >= 4:
		item.Status = StatusStrong
		item.Recommendation = fmt.Sprintf("%s 심화 질문과 내부 동작 원리 딥다이브에 대비하세요.", tech.Normalized)
	case prof == 3:
		item.Status = StatusModerate
		item.Recommendation = fmt.Sprintf("%s 실무 사례와 트러블슈팅 경험을 정리해 두세요.", tech.Normalized)
	default:
		item.Status = StatusWeak
		item.Recommendation = fmt.Sprintf("%s 핵심 개념과 활용 패턴을 복습하세요.", tech.Normalized)
	}
	return item
}

// matchScore counts required items with strong or moderate coverage. With
// zero required items the score is defined as 100.
func matchScore(items []Item) int {
	total, matched := 0, 0
	for _, item := range items {
		if item.Importance != ImportanceRequired {
			continue
		}
		total++
		if item.Status == StatusStrong || item.Status == StatusModerate {
			matched++
		}
	}
	if total == 0 {
		return 100
	}
	return int(math.Round(float64(matched) / float64(total) * 100))
}

// recommendTopics prioritizes required gaps, then required strengths, then
// required moderates, capped at maxRecommendedTopics.
func recommendTopics(items []Item) []string {
	rank := func(item Item) int {
		switch item.Status {
		case StatusWeak, StatusMissing:
			return 0
		case StatusStrong:
			return 1
		default:
			return 2
		}
	}
	var required []Item
	for _, item := range items {
		if item.Importance == ImportanceRequired {
			required = append(required, item)
		}
	}
	sort.SliceStable(required, func(i, j int) bool { return rank(required[i]) < rank(required[j]) })

	topics := make([]string, 0, len(required))
	for _, item := range required {
		if len(topics) == maxRecommendedTopics {
			break
		}
		topics = append(topics, item.Skill)
	}
	return topics
}

func summarize(score int, items []Item, requiredCount int) string {
	if requiredCount == 0 {
		return "요구 기술 정보가 없어 적합도를 분석할 수 없습니다."
	}
	gaps := 0
	for _, item := range items {
		if item.Importance != ImportanceRequired {
			continue
		}
		if item.Status == StatusWeak || item.Status == StatusMissing {
			gaps++
		}
	}
	switch {
	case score >= 80:
		return fmt.Sprintf("적합도가 높습니다. 강점 기술의 심화 질문 위주로 면접을 준비하세요. (적합도 %d%%)", score)
	case score >= 50:
		return fmt.Sprintf("적합도가 보통입니다. 보완할 기술 %d개를 우선 학습하면 경쟁력이 올라갑니다. (적합도 %d%%)", gaps, score)
	default:
		return fmt.Sprintf("적합도가 낮습니다. 핵심 기술 %d개 보강이 필요합니다. (적합도 %d%%)", gaps, score)
	}
}
