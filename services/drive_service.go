package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const xlsxMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ErrDriveNotConfigured labels the missing-credential case so callers can
// report configuration trouble distinctly from transport failures.
var ErrDriveNotConfigured = errors.New("google drive not configured: GOOGLE_SERVICE_ACCOUNT_JSON not set")

// DriveFileRef identifies a synced file on Drive.
type DriveFileRef struct {
	ID           string `json:"fileId"`
	Name         string `json:"name,omitempty"`
	WebViewLink  string `json:"webViewLink,omitempty"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
}

// DriveService wraps the Drive v3 API with service-account auth. It only
// ever uploads or updates in place; no deletes, no versions.
type DriveService struct {
	credentialsJSON string
	folderID        string
}

func NewDriveService() *DriveService {
	return &DriveService{
		credentialsJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		folderID:        os.Getenv("GOOGLE_DRIVE_FOLDER_ID"),
	}
}

func (s *DriveService) Configured() bool {
	return s.credentialsJSON != ""
}

func (s *DriveService) client(ctx context.Context) (*drive.Service, error) {
	if !s.Configured() {
		return nil, ErrDriveNotConfigured
	}
	svc, err := drive.NewService(ctx,
		option.WithCredentialsJSON([]byte(s.credentialsJSON)),
		option.WithScopes(drive.DriveFileScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create drive client: %w", err)
	}
	return svc, nil
}

// FindByName returns the first non-trashed file with the given name, or nil
// when nothing matches.
func (s *DriveService) FindByName(ctx context.Context, name string) (*DriveFileRef, error) {
	svc, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("name='%s' and trashed=false", name)
	if s.folderID != "" {
		query += fmt.Sprintf(" and '%s' in parents", s.folderID)
	}

	res, err := svc.Files.List().
		Q(query).
		Fields("files(id, name, webViewLink)").
		PageSize(1).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	if len(res.Files) == 0 {
		return nil, nil
	}

	f := res.Files[0]
	return &DriveFileRef{ID: f.Id, Name: f.Name, WebViewLink: f.WebViewLink}, nil
}

// Upload creates a new file on Drive from the local path.
func (s *DriveService) Upload(ctx context.Context, path, name string) (*DriveFileRef, error) {
	svc, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	meta := &drive.File{Name: name}
	if s.folderID != "" {
		meta.Parents = []string{s.folderID}
	}

	created, err := svc.Files.Create(meta).
		Media(file, googleapi.ContentType(xlsxMimeType)).
		Fields("id, name, webViewLink, webContentLink").
		Do()
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", name, err)
	}

	log.Printf("📤 Uploaded %s to Google Drive (id %s)", name, created.Id)
	return &DriveFileRef{ID: created.Id, Name: created.Name, WebViewLink: created.WebViewLink}, nil
}

// Update replaces the content of an existing Drive file in place.
func (s *DriveService) Update(ctx context.Context, fileID, path string) (*DriveFileRef, error) {
	svc, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	updated, err := svc.Files.Update(fileID, &drive.File{}).
		Media(file, googleapi.ContentType(xlsxMimeType)).
		Fields("id, name, modifiedTime, webViewLink").
		Do()
	if err != nil {
		return nil, fmt.Errorf("update file %s: %w", fileID, err)
	}

	log.Printf("🔄 Updated Drive file %s (%s)", fileID, updated.ModifiedTime)
	return &DriveFileRef{
		ID:           updated.Id,
		Name:         updated.Name,
		WebViewLink:  updated.WebViewLink,
		ModifiedTime: updated.ModifiedTime,
	}, nil
}

// MakePublic grants anyone-with-the-link read access.
func (s *DriveService) MakePublic(ctx context.Context, fileID string) error {
	svc, err := s.client(ctx)
	if err != nil {
		return err
	}

	_, err = svc.Permissions.Create(fileID, &drive.Permission{
		Role: "reader",
		Type: "anyone",
	}).Do()
	if err != nil {
		return fmt.Errorf("make file public: %w", err)
	}
	return nil
}

// Sync pushes the local workbook to Drive: update in place when the file is
// already known (by remembered id or by name lookup), otherwise upload
// fresh and publish it.
func (s *DriveService) Sync(ctx context.Context, path, name, knownFileID string) (*DriveFileRef, error) {
	fileID := knownFileID
	var link string

	if fileID == "" {
		existing, err := s.FindByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			fileID = existing.ID
			link = existing.WebViewLink
		}
	}

	if fileID != "" {
		ref, err := s.Update(ctx, fileID, path)
		if err != nil {
			return nil, err
		}
		if ref.WebViewLink == "" {
			ref.WebViewLink = link
		}
		return ref, nil
	}

	ref, err := s.Upload(ctx, path, name)
	if err != nil {
		return nil, err
	}
	if err := s.MakePublic(ctx, ref.ID); err != nil {
		// The file is up; a failed permission grant shouldn't undo that.
		log.Printf("⚠️ Could not make Drive file public: %v", err)
	}
	return ref, nil
}
