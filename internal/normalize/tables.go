package normalize

// Tech categories used across the pipeline. Anything unrecognized falls
// back to CategoryOther.
const (
	CategoryLanguage = "language"
	CategoryFrontend = "frontend"
	CategoryBackend  = "backend"
	CategoryMobile   = "mobile"
	CategoryDatabase = "database"
	CategoryDevOps   = "devops"
	CategoryCloud    = "cloud"
	CategoryAI       = "ai"
	CategoryOther    = "other"
)

// canonicalTechs maps every canonical tech name to its category. The
// canonical spelling is what the rest of the pipeline keys on.
var canonicalTechs = map[string]string{
	"JavaScript": CategoryLanguage,
	"TypeScript": CategoryLanguage,
	"Java":       CategoryLanguage,
	"Python":     CategoryLanguage,
	"Go":         CategoryLanguage,
	"Kotlin":     CategoryLanguage,
	"Swift":      CategoryLanguage,
	"C":          CategoryLanguage,
	"C++":        CategoryLanguage,
	"C#":         CategoryLanguage,
	"Ruby":       CategoryLanguage,
	"PHP":        CategoryLanguage,
	"Rust":       CategoryLanguage,
	"Scala":      CategoryLanguage,

	"React":   CategoryFrontend,
	"Next.js": CategoryFrontend,
	"Vue.js":  CategoryFrontend,
	"Nuxt.js": CategoryFrontend,
	"Angular": CategoryFrontend,
	"Svelte":  CategoryFrontend,

	"Node.js":       CategoryBackend,
	"Spring Boot":   CategoryBackend,
	"Django":        CategoryBackend,
	"Flask":         CategoryBackend,
	"FastAPI":       CategoryBackend,
	"Express":       CategoryBackend,
	"NestJS":        CategoryBackend,
	"Ruby on Rails": CategoryBackend,
	"Laravel":       CategoryBackend,
	"GraphQL":       CategoryBackend,
	"gRPC":          CategoryBackend,
	"Kafka":         CategoryBackend,
	"RabbitMQ":      CategoryBackend,

	"React Native": CategoryMobile,
	"Flutter":      CategoryMobile,
	"Android":      CategoryMobile,
	"iOS":          CategoryMobile,

	"MySQL":         CategoryDatabase,
	"PostgreSQL":    CategoryDatabase,
	"MongoDB":       CategoryDatabase,
	"Redis":         CategoryDatabase,
	"Oracle":        CategoryDatabase,
	"Elasticsearch": CategoryDatabase,

	"Docker":         CategoryDevOps,
	"Kubernetes":     CategoryDevOps,
	"Jenkins":        CategoryDevOps,
	"Terraform":      CategoryDevOps,
	"Ansible":        CategoryDevOps,
	"GitHub Actions": CategoryDevOps,

	"AWS":   CategoryCloud,
	"GCP":   CategoryCloud,
	"Azure": CategoryCloud,

	"Machine Learning": CategoryAI,
	"Deep Learning":    CategoryAI,
	"TensorFlow":       CategoryAI,
	"PyTorch":          CategoryAI,
}

// koreanTechNames maps Korean spellings (as extracted from Korean job
// boards) to canonical names. Looked up before the English variant table.
var koreanTechNames = map[string]string{
	"자바스크립트": "JavaScript",
	"타입스크립트": "TypeScript",
	"자바":     "Java",
	"파이썬":    "Python",
	"고":      "Go",
	"코틀린":    "Kotlin",
	"스위프트":   "Swift",
	"러스트":    "Rust",
	"리액트":    "React",
	"넥스트":    "Next.js",
	"뷰":      "Vue.js",
	"앵귤러":    "Angular",
	"노드":     "Node.js",
	"스프링":    "Spring Boot",
	"스프링부트":  "Spring Boot",
	"장고":     "Django",
	"플라스크":   "Flask",
	"리액트네이티브": "React Native",
	"플러터":    "Flutter",
	"안드로이드":  "Android",
	"아이오에스":  "iOS",
	"도커":     "Docker",
	"쿠버네티스":  "Kubernetes",
	"젠킨스":    "Jenkins",
	"테라폼":    "Terraform",
	"몽고디비":   "MongoDB",
	"레디스":    "Redis",
	"오라클":    "Oracle",
	"엘라스틱서치": "Elasticsearch",
	"카프카":    "Kafka",
	"머신러닝":   "Machine Learning",
	"기계학습":   "Machine Learning",
	"딥러닝":    "Deep Learning",
	"텐서플로우":  "TensorFlow",
	"파이토치":   "PyTorch",
}

// englishVariants maps lowercased abbreviations and alternate spellings to
// canonical names. Keys must be lowercase.
var englishVariants = map[string]string{
	"js":            "JavaScript",
	"javascript es6": "JavaScript",
	"ts":            "TypeScript",
	"golang":        "Go",
	"c sharp":       "C#",
	"cpp":           "C++",
	"reactjs":       "React",
	"react.js":      "React",
	"nextjs":        "Next.js",
	"next":          "Next.js",
	"vue":           "Vue.js",
	"vuejs":         "Vue.js",
	"nuxt":          "Nuxt.js",
	"nuxtjs":        "Nuxt.js",
	"angularjs":     "Angular",
	"node":          "Node.js",
	"nodejs":        "Node.js",
	"spring":        "Spring Boot",
	"springboot":    "Spring Boot",
	"spring framework": "Spring Boot",
	"express.js":    "Express",
	"expressjs":     "Express",
	"nest.js":       "NestJS",
	"nestjs":        "NestJS",
	"rails":         "Ruby on Rails",
	"rn":            "React Native",
	"postgres":      "PostgreSQL",
	"postgre":       "PostgreSQL",
	"mongo":         "MongoDB",
	"es":            "Elasticsearch",
	"elastic":       "Elasticsearch",
	"k8s":           "Kubernetes",
	"kube":          "Kubernetes",
	"github action": "GitHub Actions",
	"amazon web services": "AWS",
	"google cloud":  "GCP",
	"google cloud platform": "GCP",
	"ms azure":      "Azure",
	"ml":            "Machine Learning",
	"dl":            "Deep Learning",
	"tensorflow2":   "TensorFlow",
	"torch":         "PyTorch",
}

// employmentTypeTable maps canonical employment types to their Korean and
// English synonyms. Order matters: earlier entries win on substring ties.
var employmentTypeTable = []struct {
	canonical string
	synonyms  []string
}{
	{"정규직", []string{"정규직", "정규", "full-time", "fulltime", "full time", "permanent"}},
	{"계약직", []string{"계약직", "계약", "기간제", "contract", "contractor"}},
	{"인턴", []string{"인턴십", "인턴", "intern", "internship"}},
	{"프리랜서", []string{"프리랜서", "freelancer", "freelance"}},
	{"파견직", []string{"파견직", "파견", "dispatch"}},
	{"아르바이트", []string{"아르바이트", "알바", "part-time", "parttime", "part time"}},
}

// locationShortForms collapses formal administrative names to the short
// forms used in the UI and in cross-site aggregation.
var locationShortForms = map[string]string{
	"서울특별시":   "서울",
	"부산광역시":   "부산",
	"대구광역시":   "대구",
	"인천광역시":   "인천",
	"광주광역시":   "광주",
	"대전광역시":   "대전",
	"울산광역시":   "울산",
	"세종특별자치시": "세종",
	"경기도":     "경기",
	"강원특별자치도": "강원",
	"강원도":     "강원",
	"충청북도":    "충북",
	"충청남도":    "충남",
	"전북특별자치도": "전북",
	"전라북도":    "전북",
	"전라남도":    "전남",
	"경상북도":    "경북",
	"경상남도":    "경남",
	"제주특별자치도": "제주",
	"제주도":     "제주",
}

// negotiableSalaryKeywords normalize to 협의. Matched case-insensitively.
var negotiableSalaryKeywords = []string{
	"협의",
	"면접 후 결정",
	"면접후결정",
	"면접 후 협의",
	"회사 내규에 따름",
	"회사내규에 따름",
	"회사내규",
	"내규에 따름",
	"추후 협의",
	"negotiable",
}

// ongoingDeadlineKeywords normalize to 상시채용.
var ongoingDeadlineKeywords = []string{
	"상시채용",
	"상시 채용",
	"상시모집",
	"상시",
	"수시채용",
	"수시 채용",
	"수시",
	"채용시 마감",
	"채용 시 마감",
	"채용시까지",
}

// Company size buckets, largest threshold last.
const (
	sizeStartup = "스타트업"
	sizeSmall   = "중소기업"
	sizeMedium  = "중견기업"
	sizeLarge   = "대기업"
)

// companySizeKeywords matches size names appearing without an employee
// count.
var companySizeKeywords = []string{
	sizeStartup,
	sizeSmall,
	sizeMedium,
	sizeLarge,
	"외국계기업",
	"공공기관",
}
