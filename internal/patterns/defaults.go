package patterns

var defaultRegistry = MustBuild(DefaultSpec())

// Default returns the process-wide registry built from the compiled-in tables
func Default() *Registry {
	return defaultRegistry
}

// DefaultSpec returns a fresh copy of the compiled-in tables
func DefaultSpec() Spec {
	return Spec{
		Technologies: []TechnologySpec{
			{
				Name:  "python",
				Files: []string{`\.py$`, `requirements\.txt$`, `setup\.py$`, `pyproject\.toml$`},
				Frameworks: []Framework{
					{Name: "django", Keywords: []string{"django", "DJANGO_SETTINGS", "urls.py"}},
					{Name: "flask", Keywords: []string{"flask", "Flask(__name__)", "@app.route"}},
					{Name: "fastapi", Keywords: []string{"fastapi", "FastAPI()", "@app.get"}},
					{Name: "pytorch", Keywords: []string{"torch", "nn.Module", "optim."}},
					{Name: "tensorflow", Keywords: []string{"tensorflow", "tf.", "keras"}},
				},
			},
			{
				Name:  "javascript",
				Files: []string{`\.js$`, `\.jsx$`, `package\.json$`},
				Frameworks: []Framework{
					{Name: "react", Keywords: []string{"react", "useState", "useEffect", "jsx"}},
					{Name: "vue", Keywords: []string{"vue", "createApp", "defineComponent"}},
					{Name: "angular", Keywords: []string{"@angular", "ngModule", "Component"}},
					{Name: "express", Keywords: []string{"express", "app.listen", "router.get"}},
				},
			},
			{
				Name:  "typescript",
				Files: []string{`\.ts$`, `\.tsx$`, `tsconfig\.json$`},
				Frameworks: []Framework{
					{Name: "nestjs", Keywords: []string{"@nestjs", "Injectable", "Controller"}},
					{Name: "nextjs", Keywords: []string{"next", "getStaticProps", "getServerSideProps"}},
					{Name: "typeorm", Keywords: []string{"typeorm", "Entity", "Repository"}},
				},
			},
		},

		// Order matters: "check" appears under analyze and test, analyze wins.
		Actions: []CategorySpec{
			{Name: "analyze", Pattern: `analyze|analyse|check|review|examine`},
			{Name: "optimize", Pattern: `optimize|improve|enhance|speed up|fix`},
			{Name: "create", Pattern: `create|make|generate|build|implement`},
			{Name: "test", Pattern: `test|verify|validate|check`},
		},

		// js and ts match anywhere, so "json" counts as javascript and "tests" as typescript.
		PromptTechnologies: []CategorySpec{
			{Name: "python", Pattern: `python|django|flask|fastapi`},
			{Name: "javascript", Pattern: `javascript|js|node|nodejs|react|vue`},
			{Name: "typescript", Pattern: `typescript|ts|angular`},
			{Name: "database", Pattern: `sql|mysql|postgresql|mongodb`},
			{Name: "cloud", Pattern: `aws|azure|gcp|cloud`},
		},

		FocusAreas: []CategorySpec{
			{Name: "security", Pattern: `security|vulnerability|secure|auth|encryption`},
			{Name: "performance", Pattern: `performance|speed|efficient|optimize|fast`},
			{Name: "quality", Pattern: `quality|clean|maintainable|readable|style`},
			{Name: "testing", Pattern: `test|coverage|unit test|integration`},
		},

		Constraints: []ConstraintSpec{
			{Name: "max_complexity", Kind: Numeric, Pattern: `max(?:imum)?\s+complexity\s+(?:of\s+)?(\d+)`},
			{Name: "min_coverage", Kind: Numeric, Pattern: `min(?:imum)?\s+coverage\s+(?:of\s+)?(\d+)%?`},
			{Name: "timeout", Kind: Numeric, Pattern: `timeout\s+(?:of\s+)?(\d+)\s*(?:s|seconds)?`},
			{Name: "strict_mode", Kind: Flag, Pattern: `strict\s+mode`},
			{Name: "debug", Kind: Flag, Pattern: `debug\s+mode`},
			{Name: "verbose", Kind: Flag, Pattern: `verbose`},
		},

		Related: map[string][]string{
			"security":    {"vulnerability", "auth", "encryption"},
			"performance": {"optimization", "speed", "efficiency"},
			"quality":     {"lint", "style", "complexity"},
		},
	}
}
