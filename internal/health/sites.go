package health

// Site pairs a supported job board with one representative posting list
// URL. A fetch plus extraction of the sample page is the smoke test that
// the board's markup still matches what the extraction step expects.
type Site struct {
	Domain    string
	SampleURL string
}

// Sites lists every supported board, in check order.
var Sites = []Site{
	{Domain: "saramin.co.kr", SampleURL: "https://www.saramin.co.kr/zf_user/jobs/list/job-category?cat_mcls=2"},
	{Domain: "jobkorea.co.kr", SampleURL: "https://www.jobkorea.co.kr/recruit/joblist?menucode=duty"},
	{Domain: "wanted.co.kr", SampleURL: "https://www.wanted.co.kr/wdlist/518"},
	{Domain: "programmers.co.kr", SampleURL: "https://career.programmers.co.kr/job"},
	{Domain: "jumpit.co.kr", SampleURL: "https://www.jumpit.co.kr/positions?jobCategory=2"},
	{Domain: "rocketpunch.com", SampleURL: "https://www.rocketpunch.com/jobs?job=1"},
	{Domain: "incruit.com", SampleURL: "https://job.incruit.com/jobdb_list/searchjob.asp?occ1=150"},
	{Domain: "catch.co.kr", SampleURL: "https://www.catch.co.kr/NCS/RecruitSearch"},
}
