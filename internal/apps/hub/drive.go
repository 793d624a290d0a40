package hub

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fredseo/showhub-backend/internal/config"
	"github.com/google/uuid"
)

// DriveFile is the narrow local shape of a Google Drive file entry.
type DriveFile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mime_type"`
	ModifiedTime string `json:"modified_time"`
	IconLink     string `json:"icon_link,omitempty"`
	WebViewLink  string `json:"web_view_link,omitempty"`
}

// DriveFileList is what the drive widgets render.
type DriveFileList struct {
	Files    []DriveFile `json:"files"`
	Count    int         `json:"count"`
	MimeType string      `json:"mime_type,omitempty"`
}

// DriveClient proxies the Google Drive files API through the shared token
// provider.
type DriveClient struct {
	tokens *TokenProvider
	apiURL string
	client *http.Client
}

func NewDriveClient(tokens *TokenProvider, cfg *config.Config) *DriveClient {
	return &DriveClient{
		tokens: tokens,
		apiURL: cfg.DriveAPIURL,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type driveListResponse struct {
	Files []struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		MimeType     string `json:"mimeType"`
		ModifiedTime string `json:"modifiedTime"`
		IconLink     string `json:"iconLink"`
		WebViewLink  string `json:"webViewLink"`
	} `json:"files"`
}

func (d *DriveClient) RecentFiles(ctx context.Context, userID uuid.UUID, pageSize int) (*DriveFileList, error) {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}
	params := url.Values{
		"pageSize": {strconv.Itoa(pageSize)},
		"orderBy":  {"modifiedTime desc"},
		"q":        {"trashed=false"},
		"fields":   {"files(id,name,mimeType,modifiedTime,iconLink,webViewLink)"},
	}
	return d.listFiles(ctx, userID, params, "")
}

func (d *DriveClient) FilesByType(ctx context.Context, userID uuid.UUID, mimeType string) (*DriveFileList, error) {
	params := url.Values{
		"q":        {fmt.Sprintf("mimeType='%s' and trashed=false", mimeType)},
		"pageSize": {"20"},
		"orderBy":  {"modifiedTime desc"},
		"fields":   {"files(id,name,mimeType,modifiedTime,iconLink,webViewLink)"},
	}
	return d.listFiles(ctx, userID, params, mimeType)
}

func (d *DriveClient) listFiles(ctx context.Context, userID uuid.UUID, params url.Values, mimeType string) (*DriveFileList, error) {
	token, err := d.tokens.AccessToken(ctx, userID, ServiceDrive)
	if err != nil {
		return nil, err
	}

	var list driveListResponse
	if err := googleGet(ctx, d.client, d.apiURL+"/files", params, token, &list); err != nil {
		return nil, err
	}

	files := make([]DriveFile, 0, len(list.Files))
	for _, f := range list.Files {
		files = append(files, DriveFile{
			ID:           f.ID,
			Name:         f.Name,
			MimeType:     f.MimeType,
			ModifiedTime: f.ModifiedTime,
			IconLink:     f.IconLink,
			WebViewLink:  f.WebViewLink,
		})
	}
	return &DriveFileList{Files: files, Count: len(files), MimeType: mimeType}, nil
}
