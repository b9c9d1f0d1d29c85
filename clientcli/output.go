package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Formatter formats results for output.
type Formatter interface {
	FormatUpload(w io.Writer, results []UploadResult) error
	FormatDownload(w io.Writer, result *DownloadResult) error
	FormatInfo(w io.Writer, meta *PhotoMetadata) error
	FormatDelete(w io.Writer, results []DeleteResult) error
	FormatList(w io.Writer, result *ListResult) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatUpload formats upload results as human-readable text.
// In quiet mode only the photo ids are printed.
func (f *HumanFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.LocalPath, r.Err)
			continue
		}
		if f.Quiet {
			_, _ = fmt.Fprintln(w, r.PhotoID)
			continue
		}
		_, _ = fmt.Fprintf(w, "Uploaded: %s -> %s (%s)\n", r.LocalPath, r.PhotoID, formatSize(r.Size))
		_, _ = fmt.Fprintf(w, "  Key: %s\n", r.Key)
		if r.PreviousVersion != "" {
			_, _ = fmt.Fprintf(w, "  Replaced: %s\n", r.PreviousVersion)
		}
	}
	return nil
}

// FormatDownload formats download result as human-readable text.
func (f *HumanFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	if f.Quiet {
		return nil
	}
	if result.LocalPath == "-" {
		_, _ = fmt.Fprintf(w, "Downloaded: %s [%s] (%s)\n", result.PhotoID, result.VersionType, formatSize(result.Size))
	} else {
		_, _ = fmt.Fprintf(w, "Downloaded: %s [%s] -> %s (%s)\n", result.PhotoID, result.VersionType, result.LocalPath, formatSize(result.Size))
	}
	return nil
}

// FormatInfo formats a photo's metadata as human-readable text.
func (f *HumanFormatter) FormatInfo(w io.Writer, meta *PhotoMetadata) error {
	_, _ = fmt.Fprintf(w, "Photo:      %s\n", meta.PhotoID)
	_, _ = fmt.Fprintf(w, "Status:     %s\n", meta.Status)
	_, _ = fmt.Fprintf(w, "Created:    %s\n", meta.CreatedAt.Format(time.DateTime))
	_, _ = fmt.Fprintf(w, "Updated:    %s\n", meta.UpdatedAt.Format(time.DateTime))
	_, _ = fmt.Fprintf(w, "Original:   %s (%s, %s)\n", meta.Original.Filename, meta.Original.ContentType, formatSize(meta.Original.FileSize))
	if meta.Edited != nil {
		_, _ = fmt.Fprintf(w, "Edited:     %s (%s, %s, %d edit(s))\n",
			meta.Edited.Filename, meta.Edited.ContentType, formatSize(meta.Edited.FileSize), meta.Edited.EditCount)
	} else {
		_, _ = fmt.Fprintln(w, "Edited:     (none)")
	}
	if meta.Description != "" {
		_, _ = fmt.Fprintf(w, "Description: %s\n", meta.Description)
	}
	if len(meta.Tags) > 0 {
		_, _ = fmt.Fprintf(w, "Tags:       %s\n", strings.Join(meta.Tags, ", "))
	}
	return nil
}

// FormatDelete formats delete results as human-readable text.
func (f *HumanFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.PhotoID, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Deleted: %s (%d object(s))\n", r.PhotoID, len(r.DeletedItems))
		}
	}
	return nil
}

// FormatList formats list results as human-readable text.
func (f *HumanFormatter) FormatList(w io.Writer, result *ListResult) error {
	if len(result.Photos) == 0 {
		_, _ = fmt.Fprintln(w, "No photos found")
		return nil
	}

	maxNameLen := 8 // "FILENAME"
	for i := range result.Photos {
		if len(result.Photos[i].Filename) > maxNameLen {
			maxNameLen = len(result.Photos[i].Filename)
		}
	}
	if maxNameLen > 40 {
		maxNameLen = 40
	}

	_, _ = fmt.Fprintf(w, "%-36s  %-*s  %-8s  %10s  %s\n", "PHOTO ID", maxNameLen, "FILENAME", "VERSION", "SIZE", "CREATED")
	_, _ = fmt.Fprintf(w, "%s  %s  %s  %s  %s\n",
		strings.Repeat("-", 36), strings.Repeat("-", maxNameLen), strings.Repeat("-", 8), strings.Repeat("-", 10), strings.Repeat("-", 19))

	for i := range result.Photos {
		p := &result.Photos[i]
		name := p.Filename
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}
		_, _ = fmt.Fprintf(w, "%-36s  %-*s  %-8s  %10s  %s\n",
			p.PhotoID,
			maxNameLen,
			name,
			p.VersionType,
			formatSize(p.FileSize),
			p.CreatedAt.Format(time.DateTime),
		)
	}

	_, _ = fmt.Fprintf(w, "\n%d photo(s) (%s total)\n", len(result.Photos), formatSize(result.TotalSize()))

	if result.NextCursor != "" {
		_, _ = fmt.Fprintf(w, "Next page: use --cursor %q\n", result.NextCursor)
	}

	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatUpload formats upload results as JSON.
func (f *JSONFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	type jsonResult struct {
		UploadResult
		Error string `json:"error,omitempty"`
	}

	output := make([]jsonResult, len(results))
	for i := range results {
		output[i] = jsonResult{UploadResult: results[i]}
		if results[i].Err != nil {
			output[i].Error = results[i].Err.Error()
		}
	}

	return writeJSON(w, output)
}

// FormatDownload formats download result as JSON.
func (f *JSONFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	return writeJSON(w, result)
}

// FormatInfo formats a photo's metadata as JSON.
func (f *JSONFormatter) FormatInfo(w io.Writer, meta *PhotoMetadata) error {
	return writeJSON(w, meta)
}

// FormatDelete formats delete results as JSON.
func (f *JSONFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	type jsonResult struct {
		DeleteResult
		Error string `json:"error,omitempty"`
	}

	output := struct {
		Results []jsonResult `json:"results"`
	}{
		Results: make([]jsonResult, len(results)),
	}

	for i := range results {
		output.Results[i] = jsonResult{DeleteResult: results[i]}
		if results[i].Err != nil {
			output.Results[i].Error = results[i].Err.Error()
		}
	}

	return writeJSON(w, output)
}

// FormatList formats list results as JSON.
func (f *JSONFormatter) FormatList(w io.Writer, result *ListResult) error {
	return writeJSON(w, result)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatProfileList formats a list of profiles as human-readable text.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	maxNameLen := 4   // "NAME"
	maxServerLen := 6 // "SERVER"
	for i := range profiles {
		maxNameLen = max(maxNameLen, len(profiles[i].Name))
		maxServerLen = max(maxServerLen, len(profiles[i].Server))
	}
	maxNameLen = min(maxNameLen, 20)
	maxServerLen = min(maxServerLen, 50)

	_, _ = fmt.Fprintf(w, "  %-*s  %-*s  %-20s  %s\n", maxNameLen, "NAME", maxServerLen, "SERVER", "USER", "TOKEN")
	_, _ = fmt.Fprintf(w, "  %s  %s  %s  %s\n",
		strings.Repeat("-", maxNameLen), strings.Repeat("-", maxServerLen), strings.Repeat("-", 20), strings.Repeat("-", 20))

	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}

		name := p.Name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}

		server := p.Server
		if len(server) > maxServerLen {
			server = server[:maxServerLen-3] + "..."
		}

		user := p.UserID
		if user == "" {
			user = "-"
		}

		_, _ = fmt.Fprintf(w, "%s %-*s  %-*s  %-20s  %s\n", marker, maxNameLen, name, maxServerLen, server, user, maskSecret(p.Token, showSecrets))
	}

	return nil
}

// FormatProfileShow formats a single profile as human-readable text.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	_, _ = fmt.Fprintf(w, "Name:    %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprintf(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Server:  %s\n", profile.Server)
	if profile.UserID != "" {
		_, _ = fmt.Fprintf(w, "User ID: %s\n", profile.UserID)
	} else {
		_, _ = fmt.Fprintln(w, "User ID: (not set)")
	}
	_, _ = fmt.Fprintf(w, "Token:   %s\n", maskSecret(profile.Token, showSecrets))
	return nil
}

type jsonProfile struct {
	Name    string `json:"name"`
	Server  string `json:"server"`
	UserID  string `json:"user_id,omitempty"`
	Token   string `json:"token,omitempty"`
	Default bool   `json:"default"`
}

func newJSONProfile(p *Profile, isDefault, showSecrets bool) jsonProfile {
	return jsonProfile{
		Name:    p.Name,
		Server:  p.Server,
		UserID:  p.UserID,
		Token:   maskSecret(p.Token, showSecrets),
		Default: isDefault,
	}
}

// FormatProfileList formats a list of profiles as JSON.
func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	output := struct {
		Profiles []jsonProfile `json:"profiles"`
	}{
		Profiles: make([]jsonProfile, len(profiles)),
	}

	for i := range profiles {
		output.Profiles[i] = newJSONProfile(&profiles[i], profiles[i].Name == defaultName, showSecrets)
	}

	return writeJSON(w, output)
}

// FormatProfileShow formats a single profile as JSON.
func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	return writeJSON(w, newJSONProfile(&profile, isDefault, showSecrets))
}

// maskSecret masks a secret string, showing only first 4 and last 4 characters.
// If showSecrets is true, returns the original value.
// If the secret is too short, returns all asterisks.
func maskSecret(secret string, showSecrets bool) string {
	if showSecrets {
		return secret
	}
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
