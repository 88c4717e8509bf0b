package pdf

import (
	"sync"
	"time"

	"github.com/a3tai/mcp-fraud-trail/internal/descriptions"
)

// ToolInfo describes one tool offered by the server
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ServerInfoResult describes the server configuration and capabilities
type ServerInfoResult struct {
	ServerName       string     `json:"server_name"`
	Version          string     `json:"version"`
	ReportDirectory  string     `json:"report_directory"`
	OutputDirectory  string     `json:"output_directory,omitempty"`
	ArtifactTTL      string     `json:"artifact_ttl,omitempty"`
	MaxFileSize      int64      `json:"max_file_size"`
	IconCount        int        `json:"icon_count"`
	ReportCount      int        `json:"report_count"`
	ReportCountError string     `json:"report_count_error,omitempty"`
	AvailableTools   []ToolInfo `json:"available_tools"`
}

// reportCountCache remembers how many reports the directory holds for a
// short time, so repeated info calls do not walk a large tree every time.
type reportCountCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	count   int
	updated time.Time
}

func (c *reportCountCache) get(now time.Time, scan func() (int, error)) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.updated.IsZero() && now.Sub(c.updated) < c.ttl {
		return c.count, nil
	}
	n, err := scan()
	if err != nil {
		return 0, err
	}
	c.count = n
	c.updated = now
	return n, nil
}

// ServerInfo reports the service configuration. Output settings come from the
// caller because the service only sees the store through ArtifactStore.
func (s *Service) ServerInfo(serverName, version, outputDir string, artifactTTL time.Duration) *ServerInfoResult {
	info := &ServerInfoResult{
		ServerName:      serverName,
		Version:         version,
		ReportDirectory: s.guard.Root(),
		OutputDirectory: outputDir,
		MaxFileSize:     s.maxFileSize,
		IconCount:       s.icons.Len(),
	}
	if artifactTTL > 0 {
		info.ArtifactTTL = artifactTTL.String()
	}

	count, err := s.countCache.get(time.Now(), func() (int, error) {
		res, err := s.ListReports(ListReportsRequest{})
		if err != nil {
			return 0, err
		}
		return res.TotalCount, nil
	})
	if err != nil {
		info.ReportCountError = err.Error()
	} else {
		info.ReportCount = count
	}

	for _, name := range descriptions.GetAllToolNames() {
		info.AvailableTools = append(info.AvailableTools, ToolInfo{
			Name:        name,
			Description: firstLine(descriptions.GetToolDescription(name)),
		})
	}
	return info
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
