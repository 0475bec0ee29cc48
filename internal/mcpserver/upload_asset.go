package mcpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// Attachments live flat under attachments/ in the content root and are
// served by the HTTP layer at /attachments/. Size cap 10 MB.
const maxAttachmentBytes = 10 << 20

var (
	attachmentExts = map[string]bool{
		".png": true, ".jpg": true, ".jpeg": true,
		".gif": true, ".webp": true, ".svg": true, ".pdf": true,
	}

	extByMIME = map[string]string{
		"image/png":       ".png",
		"image/jpeg":      ".jpg",
		"image/gif":       ".gif",
		"image/webp":      ".webp",
		"image/svg+xml":   ".svg",
		"application/pdf": ".pdf",
	}

	unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
)

type uploadResult struct {
	SavedPath     string `json:"savedPath"`
	MarkdownImage string `json:"markdownImage"`
	Size          int64  `json:"size"`
}

// uploadAsset stores an image or PDF fetched from a data URI or an HTTP
// URL and returns the Markdown reference a post can embed.
func (s *Server) uploadAsset(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name := ""
	if v, nErr := req.RequireString("filename"); nErr == nil {
		name = v
	}

	var data []byte
	var extHint string
	if strings.HasPrefix(rawURL, "data:") {
		data, extHint, err = decodeDataURI(rawURL)
	} else {
		data, extHint, err = fetchRemote(rawURL)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(data) > maxAttachmentBytes {
		return mcp.NewToolResultError(fmt.Sprintf("attachment too large: %d bytes, limit %d", len(data), maxAttachmentBytes)), nil
	}

	if name == "" {
		name = attachmentName(rawURL, extHint)
	}
	name = cleanName(name)

	ext := strings.ToLower(filepath.Ext(name))
	if !attachmentExts[ext] {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported attachment extension %s, allowed: png, jpg, jpeg, gif, webp, svg, pdf", ext)), nil
	}
	if err := checkContent(data, ext); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rel := filepath.Join("attachments", name)
	if _, readErr := s.store.Read(rel); readErr == nil {
		return mcp.NewToolResultError(fmt.Sprintf("attachment already exists: %s", rel)), nil
	}
	if err := s.store.Write(rel, data); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("store attachment: %v", err)), nil
	}

	urlPath := "/attachments/" + name
	out, _ := json.Marshal(uploadResult{
		SavedPath:     urlPath,
		MarkdownImage: fmt.Sprintf("![%s](%s)", name, urlPath),
		Size:          int64(len(data)),
	})
	return mcp.NewToolResultText(string(out)), nil
}

// decodeDataURI handles data:<mediatype>;base64,<payload>. Only base64
// payloads are accepted; the MIME type must map to a known extension.
func decodeDataURI(uri string) ([]byte, string, error) {
	meta, encoded, found := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !found {
		return nil, "", fmt.Errorf("invalid data URI: no comma separator")
	}
	if !strings.Contains(meta, ";base64") {
		return nil, "", fmt.Errorf("only base64 data URIs are supported")
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, "", fmt.Errorf("invalid base64 payload: %w", err)
		}
	}

	mime := strings.Split(strings.TrimSuffix(meta, ";base64"), ";")[0]
	ext := extByMIME[mime]
	if ext == "" {
		return nil, "", fmt.Errorf("unsupported MIME type in data URI: %s", mime)
	}
	return data, ext, nil
}

// fetchRemote downloads over http/https. Loopback and metadata hosts are
// refused, including on redirect targets.
func fetchRemote(rawURL string) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, "", fmt.Errorf("unsupported scheme %s, only http and https", u.Scheme)
	}
	if err := rejectInternalHost(u.Hostname()); err != nil {
		return nil, "", err
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("too many redirects")
			}
			return rejectInternalHost(req.URL.Hostname())
		},
	}

	resp, err := client.Get(rawURL) //nolint:noctx
	if err != nil {
		return nil, "", fmt.Errorf("download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAttachmentBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read response: %w", err)
	}
	if len(data) > maxAttachmentBytes {
		return nil, "", fmt.Errorf("attachment too large: exceeds %d bytes", maxAttachmentBytes)
	}

	ct := strings.Split(resp.Header.Get("Content-Type"), ";")[0]
	return data, extByMIME[ct], nil
}

// rejectInternalHost blocks fetches that would reach the host itself or a
// cloud metadata endpoint.
func rejectInternalHost(host string) error {
	if host == "metadata.google.internal" {
		return fmt.Errorf("blocked host: %s", host)
	}

	ip := net.ParseIP(host)
	if ip == nil {
		ips, lookupErr := net.LookupIP(host)
		if lookupErr != nil || len(ips) == 0 {
			return nil //nolint:nilerr // unresolvable names fail in the client
		}
		ip = ips[0]
	}

	if ip.IsLoopback() {
		return fmt.Errorf("blocked host: loopback address %s", host)
	}
	if ip.Equal(net.ParseIP("169.254.169.254")) {
		return fmt.Errorf("blocked host: cloud metadata address %s", host)
	}
	return nil
}

// attachmentName derives a name from the URL path, or invents one when the
// URL carries nothing usable (data URIs, bare hosts).
func attachmentName(rawURL, extHint string) string {
	if !strings.HasPrefix(rawURL, "data:") {
		if u, err := url.Parse(rawURL); err == nil {
			base := path.Base(u.Path)
			if base != "" && base != "." && base != "/" && strings.Contains(base, ".") {
				return base
			}
		}
	}
	if extHint == "" {
		extHint = ".bin"
	}
	return uuid.New().String() + extHint
}

// cleanName flattens the name to a single safe path element.
func cleanName(name string) string {
	name = filepath.Base(name)
	name = unsafeNameChars.ReplaceAllString(name, "_")
	if name == "" || name == "." {
		name = uuid.New().String()
	}
	return name
}

// checkContent verifies the bytes actually are what the extension claims.
// SVG is text, so it gets a tag probe instead of a magic-byte sniff.
func checkContent(data []byte, ext string) error {
	if ext == ".svg" {
		probe := data
		if len(probe) > 1024 {
			probe = probe[:1024]
		}
		if !bytes.Contains(probe, []byte("<svg")) {
			return fmt.Errorf("content is not SVG: no <svg tag in the first kilobyte")
		}
		return nil
	}

	detected := http.DetectContentType(data)
	detectedExt := extByMIME[strings.Split(detected, ";")[0]]

	if ext == ".jpg" || ext == ".jpeg" {
		if detectedExt != ".jpg" && detectedExt != ".jpeg" {
			return fmt.Errorf("content does not match extension %s, detected %s", ext, detected)
		}
		return nil
	}
	if detectedExt != ext {
		return fmt.Errorf("content does not match extension %s, detected %s", ext, detected)
	}
	return nil
}
