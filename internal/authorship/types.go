// Package authorship classifies the provenance of git commits: which agent
// wrote the code, in which IDE, in what environment, with what tools and
// skills. Classification is best-effort and additive; every signal source
// may fail independently without failing the pipeline.
package authorship

// Agent identifies who (or what) authored a commit.
type Agent string

const (
	AgentClaude        Agent = "claude"
	AgentGithubCopilot Agent = "github_copilot"
	AgentChatGPT       Agent = "chatgpt"
	AgentCursorAI      Agent = "cursor_ai"
	AgentWindsurfAI    Agent = "windsurf_ai"
	AgentTabnine       Agent = "tabnine"
	AgentCodeWhisperer Agent = "codewhisperer"
	AgentHuman         Agent = "human"
	AgentUnknown       Agent = "unknown"
)

// IDE identifies an editor or IDE.
type IDE string

const IDEUnknown IDE = "unknown"

// Environment classifies where the work happened.
type Environment string

const (
	EnvLocal   Environment = "local"
	EnvUnknown Environment = "unknown"
)

// Category weights for the confidence score. Each category that produced a
// non-empty signal contributes its full weight once; the weights sum to 1.0
// so the clamp in mergeResults is belt only.
const (
	WeightAgent       = 0.4
	WeightIDE         = 0.2
	WeightEnvironment = 0.1
	WeightTools       = 0.15
	WeightSkills      = 0.15
)

// Metadata is the classification record for one commit. The JSON field set
// is the persisted wire format and must round-trip unchanged.
type Metadata struct {
	SHA           string      `json:"sha"`
	Agent         Agent       `json:"agent"`
	IDE           IDE         `json:"ide"`
	Environment   Environment `json:"environment"`
	Tools         []string    `json:"tools"`
	Skills        []string    `json:"skills"`
	Orchestration string      `json:"orchestration"`
	Timestamp     string      `json:"timestamp"`
	Confidence    float64     `json:"confidence"`
}

// agentMessagePatterns maps commit-message regexes to agents. Checked in
// order, first match wins, matching is case-insensitive. Data, not code:
// extending detection means appending a row.
var agentMessagePatterns = []struct {
	Pattern string
	Agent   Agent
}{
	{`\[claude\]`, AgentClaude},
	{`claude code`, AgentClaude},
	{`claude\.ai`, AgentClaude},
	{`anthropic`, AgentClaude},
	{`claude`, AgentClaude},
	{`co-authored-by:.*copilot`, AgentGithubCopilot},
	{`github copilot`, AgentGithubCopilot},
	{`\[copilot\]`, AgentGithubCopilot},
	{`copilot`, AgentGithubCopilot},
	{`chatgpt`, AgentChatGPT},
	{`gpt-[34]`, AgentChatGPT},
	{`\[gpt\]`, AgentChatGPT},
	{`openai`, AgentChatGPT},
	{`cursor ai`, AgentCursorAI},
	{`cursor assistant`, AgentCursorAI},
	{`\[cursor\]`, AgentCursorAI},
	{`windsurf`, AgentWindsurfAI},
	{`codeium`, AgentWindsurfAI},
	{`\[windsurf\]`, AgentWindsurfAI},
	{`tabnine`, AgentTabnine},
	{`\[tabnine\]`, AgentTabnine},
	{`aws codewhisperer`, AgentCodeWhisperer},
	{`codewhisperer`, AgentCodeWhisperer},
}

// agentEnvVars maps environment variable names to agents. Presence alone is
// the signal; values are never inspected.
var agentEnvVars = []struct {
	Var   string
	Agent Agent
}{
	{"ANTHROPIC_API_KEY", AgentClaude},
	{"OPENAI_API_KEY", AgentChatGPT},
	{"GITHUB_COPILOT", AgentGithubCopilot},
	{"COPILOT_ENABLED", AgentGithubCopilot},
	{"CURSOR_API_KEY", AgentCursorAI},
	{"CODEIUM_API_KEY", AgentWindsurfAI},
}

// idePatterns maps process-name substrings to IDEs, most specific first so
// that e.g. "xcode" and "vscodium" are not swallowed by the bare "code"
// pattern. The same table serves process names and the git core.editor value.
var idePatterns = []struct {
	Substr string
	IDE    IDE
}{
	{"code-insiders", "vscode"},
	{"vscodium", "vscode"},
	{"codium", "vscode"},
	{"xcode", "xcode"},
	{"cursor", "cursor"},
	{"windsurf", "windsurf"},
	{"pycharm", "pycharm"},
	{"webstorm", "webstorm"},
	{"phpstorm", "phpstorm"},
	{"rubymine", "rubymine"},
	{"goland", "goland"},
	{"clion", "clion"},
	{"rider", "rider"},
	{"datagrip", "datagrip"},
	{"android studio", "android_studio"},
	{"intellij", "intellij"},
	{"idea", "intellij"},
	{"sublime_text", "sublime"},
	{"sublime", "sublime"},
	{"textmate", "textmate"},
	{"bbedit", "bbedit"},
	{"brackets", "brackets"},
	{"notepad++", "notepadpp"},
	{"neovim", "vim"},
	{"nvim", "vim"},
	{"gvim", "vim"},
	{"vim", "vim"},
	{"emacs", "emacs"},
	{"atom", "atom"},
	{"zed", "zed"},
	{"nova", "nova"},
	{"fleet", "fleet"},
	{"helix", "helix"},
	{"kate", "kate"},
	{"gedit", "gedit"},
	{"geany", "geany"},
	{"eclipse", "eclipse"},
	{"netbeans", "netbeans"},
	{"rstudio", "rstudio"},
	{"spyder", "spyder"},
	{"jupyter", "jupyter"},
	{"warp", "warp"},
	{"iterm", "iterm"},
	{"alacritty", "alacritty"},
	{"kitty", "kitty"},
	{"nano", "nano"},
	{"micro", "micro"},
	{"vscode", "vscode"},
	{"code", "vscode"},
}

// ciEnvVars maps CI platform environment variables to environment names.
var ciEnvVars = []struct {
	Var string
	Env Environment
}{
	{"GITHUB_ACTIONS", "github_actions"},
	{"GITLAB_CI", "gitlab_ci"},
	{"CIRCLECI", "circleci"},
	{"TRAVIS", "travis_ci"},
	{"JENKINS_URL", "jenkins"},
	{"CODEBUILD_BUILD_ID", "aws_codebuild"},
	{"AZURE_PIPELINES", "azure_pipelines"},
}

// skillExtensions maps source file extensions to language/framework skills.
var skillExtensions = map[string]string{
	".py":    "python",
	".js":    "javascript",
	".ts":    "typescript",
	".jsx":   "react",
	".tsx":   "react",
	".go":    "go",
	".rs":    "rust",
	".java":  "java",
	".kt":    "kotlin",
	".rb":    "ruby",
	".php":   "php",
	".c":     "c",
	".cpp":   "cpp",
	".cs":    "csharp",
	".swift": "swift",
	".sh":    "bash",
	".sql":   "sql",
	".r":     "r",
}

// orchestrationMarkers maps CI config paths (relative to the repo root) to
// orchestration platforms. Checked in order, first hit wins.
var orchestrationMarkers = []struct {
	Path  string
	IsDir bool
	Name  string
}{
	{".github/workflows", true, "github_actions"},
	{".gitlab-ci.yml", false, "gitlab_ci"},
	{"Jenkinsfile", false, "jenkins"},
	{".circleci/config.yml", false, "circleci"},
	{".travis.yml", false, "travis_ci"},
	{"azure-pipelines.yml", false, "azure_pipelines"},
}
