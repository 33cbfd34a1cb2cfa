package dto

import (
	"cgl/internal/core/apperror"
	"cgl/internal/core/entity"
	"cgl/internal/core/id"
	"cgl/internal/domain/record"
)

// CreateRecordRequest is the request body for creating a record.
type CreateRecordRequest struct {
	Content       string            `json:"content"`
	ChapterID     *string           `json:"chapterId"`
	Meta          entity.Attributes `json:"meta"`
	VisibleNumber *string           `json:"visibleNumber"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateRecordRequest) ToEntity(bookID id.ID) (*record.Record, error) {
	rec := record.NewRecord(bookID, r.Content)
	chapterID, err := parseOptionalID("chapterId", r.ChapterID)
	if err != nil {
		return nil, err
	}
	rec.ChapterID = chapterID
	if r.Meta != nil {
		rec.Meta = r.Meta
	}
	return rec, nil
}

// UpdateRecordRequest is the request body for updating a record. An empty
// chapterId unlinks the record; null meta values remove keys.
type UpdateRecordRequest struct {
	Content   *string           `json:"content"`
	ChapterID *string           `json:"chapterId"`
	Meta      entity.Attributes `json:"meta"`
	Version   *int              `json:"version"`
}

// ToUpdate converts DTO to domain update.
func (r *UpdateRecordRequest) ToUpdate() (record.Update, error) {
	upd := record.Update{
		Content: r.Content,
		Meta:    r.Meta,
		Version: r.Version,
	}
	if r.ChapterID != nil {
		if *r.ChapterID == "" {
			unlink := id.ID{}
			upd.ChapterID = &unlink
		} else {
			chapterID, err := parseOptionalID("chapterId", r.ChapterID)
			if err != nil {
				return upd, err
			}
			upd.ChapterID = chapterID
		}
	}
	return upd, nil
}

// RecordResponse is the response DTO for a record.
type RecordResponse struct {
	ContentResponse
	BookID    string            `json:"bookId"`
	ChapterID *string           `json:"chapterId,omitempty"`
	RecordKey int64             `json:"recordKey"`
	Content   string            `json:"content"`
	Meta      entity.Attributes `json:"meta"`
}

// FromRecord converts domain entity to response DTO.
func FromRecord(r *record.Record) RecordResponse {
	resp := RecordResponse{
		ContentResponse: FromNumbered(r.NumberedEntity),
		BookID:          r.BookID.String(),
		RecordKey:       r.RecordKey(),
		Content:         r.Content,
		Meta:            r.Meta,
	}
	if r.ChapterID != nil {
		s := r.ChapterID.String()
		resp.ChapterID = &s
	}
	return resp
}

func parseOptionalID(field string, s *string) (*id.ID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	v, err := id.Parse(*s)
	if err != nil {
		return nil, apperror.NewValidation("invalid " + field).WithDetail(field, *s)
	}
	return &v, nil
}
