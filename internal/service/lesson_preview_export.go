package service

import (
	"context"
	"fmt"

	"github.com/noah-isme/music-school-api/internal/dto"
	appErrors "github.com/noah-isme/music-school-api/pkg/errors"
	"github.com/noah-isme/music-school-api/pkg/export"
)

var previewHeaders = []string{"Date", "Start", "End", "Teacher", "Student", "Room", "Status"}

// PreviewFile is a rendered lesson preview.
type PreviewFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportPreview renders the preview of a course as CSV (default) or PDF.
func (s *LessonGenerationService) ExportPreview(ctx context.Context, query dto.PreviewExportQuery) (*PreviewFile, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid preview export query")
	}

	preview, err := s.Preview(ctx, dto.GenerateLessonsRequest{
		CourseID:     query.CourseID,
		StartDate:    query.StartDate,
		EndDate:      query.EndDate,
		SkipHolidays: query.SkipHolidays,
	})
	if err != nil {
		return nil, err
	}

	format := export.Format(query.Format)
	if format == "" {
		format = export.FormatCSV
	}

	body, err := export.Render(format, previewDataset(preview))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render preview")
	}

	return &PreviewFile{
		Filename:    fmt.Sprintf("lessons_%s_%s_%s.%s", preview.CourseID, query.StartDate, query.EndDate, format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

func previewDataset(preview *dto.LessonPreviewResponse) export.Dataset {
	rows := make([][]string, 0, len(preview.Lessons))
	for _, lesson := range preview.Lessons {
		status := "new"
		if lesson.Exists {
			status = "exists"
		}
		rows = append(rows, []string{
			lesson.ScheduledDate,
			lesson.StartTime,
			lesson.EndTime,
			lesson.TeacherID,
			deref(lesson.StudentID),
			deref(lesson.RoomID),
			status,
		})
	}

	title := preview.CourseName
	if title == "" {
		title = preview.CourseID
	}
	return export.Dataset{
		Title:   fmt.Sprintf("Lessons for %s", title),
		Headers: previewHeaders,
		Rows:    rows,
	}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
