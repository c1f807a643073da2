// Package version вычисляет номер билда по дате сборки.
// Номер — число суток от старта проекта; проставляется линковщиком.
package version

import (
	"fmt"
	"time"
)

// Заполняются через -ldflags "-X ...".
var (
	BuildDate   string // YYYY-MM-DD (UTC)
	BuildCommit string
	BuildBranch string
)

// Отсчет билдов идет от старта проекта.
var buildEpoch = time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)

// VersionInfo — метаданные сборки, отдаются эндпоинтом /version.
// Пустой Error означает, что BuildID вычислен.
type VersionInfo struct {
	BuildID   int    `json:"buildId"`
	BuildDate string `json:"buildDate"`
	Commit    string `json:"commit"`
	Branch    string `json:"branch"`
	Error     string `json:"error,omitempty"`
}

// CalculateBuildID возвращает число суток между эпохой проекта и
// датой сборки. Обе даты в UTC, так что деление по часам точное.
func CalculateBuildID() (int, error) {
	if BuildDate == "" {
		return 0, fmt.Errorf("BuildDate is empty")
	}

	t, err := time.ParseInLocation("2006-01-02", BuildDate, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("invalid BuildDate %q: %w", BuildDate, err)
	}
	if t.Before(buildEpoch) {
		return 0, fmt.Errorf("BuildDate %s is before epoch", BuildDate)
	}

	return int(t.Sub(buildEpoch).Hours() / 24), nil
}

// Info собирает метаданные сборки. Безопасна в любой момент:
// невычислимый билд превращается в текст ошибки, не в панику.
func Info() VersionInfo {
	info := VersionInfo{
		BuildDate: BuildDate,
		Commit:    BuildCommit,
		Branch:    BuildBranch,
	}

	id, err := CalculateBuildID()
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.BuildID = id
	return info
}

// String возвращает однострочное описание сборки для лога старта.
func String() string {
	info := Info()
	if info.Error != "" {
		return fmt.Sprintf("build unknown (%s)", info.Error)
	}

	commit := info.Commit
	if commit == "" {
		commit = "dev"
	}
	branch := info.Branch
	if branch == "" {
		branch = "local"
	}
	return fmt.Sprintf("build %d (%s) %s@%s", info.BuildID, info.BuildDate, commit, branch)
}
