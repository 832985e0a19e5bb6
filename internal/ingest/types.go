// Package ingest defines core types shared across the job-posting pipeline.
package ingest

import "time"

// Screenshot is one captured image, returned as a base64 data URL.
// Source identifies what was captured; "fullpage" is the only value the
// browser manager currently emits.
type Screenshot struct {
	DataURL string `json:"data_url"`
	Source  string `json:"source"`
}

// FetchResult is the rendered output of a browser fetch. HTML contains the
// main document plus any inlined iframe content.
type FetchResult struct {
	URL         string        `json:"url"`
	FinalURL    string        `json:"final_url"`
	HTML        string        `json:"html"`
	Screenshots []Screenshot  `json:"screenshots,omitempty"`
	Duration    time.Duration `json:"duration_ms"`
}

// JobPosting is a structured posting produced by the upstream extraction
// step. Every field is independently optional; normalization is field-local.
type JobPosting struct {
	Company                 string   `json:"company,omitempty"`
	Position                string   `json:"position,omitempty"`
	JobDescription          string   `json:"job_description,omitempty"`
	Requirements            []string `json:"requirements,omitempty"`
	PreferredQualifications []string `json:"preferred_qualifications,omitempty"`
	TechStack               []string `json:"tech_stack,omitempty"`
	SalaryRange             string   `json:"salary_range,omitempty"`
	Location                string   `json:"location,omitempty"`
	EmploymentType          string   `json:"employment_type,omitempty"`
	Deadline                string   `json:"deadline,omitempty"`
	CompanySize             string   `json:"company_size,omitempty"`
}

// Skill is one entry in a user's skill profile. Proficiency is a 1-5
// self-assessment.
type Skill struct {
	Name        string `json:"name"`
	Proficiency int    `json:"proficiency"`
}

// SiteStatus is the outcome of one site health probe.
type SiteStatus string

// Health probe outcomes.
const (
	SiteStatusPass SiteStatus = "pass"
	SiteStatusFail SiteStatus = "fail"
)

// SiteHealth captures the result of smoke-testing a single job board.
type SiteHealth struct {
	Site       string        `json:"site"`
	SampleURL  string        `json:"sample_url"`
	Status     SiteStatus    `json:"status"`
	Reason     string        `json:"reason,omitempty"`
	TextLength int           `json:"text_length"`
	Duration   time.Duration `json:"duration_ms"`
}

// HealthReport is one complete run over every supported site.
type HealthReport struct {
	RunID     string       `json:"run_id"`
	StartedAt time.Time    `json:"started_at"`
	Sites     []SiteHealth `json:"sites"`
}

// Failed returns the number of sites that did not pass.
func (r HealthReport) Failed() int {
	n := 0
	for _, s := range r.Sites {
		if s.Status != SiteStatusPass {
			n++
		}
	}
	return n
}
