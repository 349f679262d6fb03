package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/tendant/simple-media/pkg/simplemedia"
)

// maxFieldLength mirrors the column widths of the media table
var maxFieldLength = map[string]int{
	"context":     64,
	"name":        255,
	"author_name": 255,
	"copyright":   255,
}

// applyForm copies the editable fields present in the parsed form onto media.
// Absent fields keep their current value.
func applyForm(r *http.Request, media *simplemedia.Media) error {
	form := r.PostForm

	textFields := map[string]*string{
		"name":        &media.Name,
		"description": &media.Description,
		"context":     &media.Context,
		"author_name": &media.AuthorName,
		"copyright":   &media.Copyright,
	}
	for field, dst := range textFields {
		if !form.Has(field) {
			continue
		}
		value := form.Get(field)
		if limit, ok := maxFieldLength[field]; ok && utf8.RuneCountInString(value) > limit {
			return fmt.Errorf("invalid %s: longer than %d characters", field, limit)
		}
		*dst = value
	}

	boolFields := map[string]*bool{
		"enabled":          &media.Enabled,
		"cdn_is_flushable": &media.CDNIsFlushable,
	}
	for field, dst := range boolFields {
		if !form.Has(field) {
			continue
		}
		v, err := strconv.ParseBool(form.Get(field))
		if err != nil {
			return fmt.Errorf("invalid %s: %q", field, form.Get(field))
		}
		*dst = v
	}
	return nil
}

// uploadedContent returns the uploaded file as pending binary content, or nil
// when the request carries no file part.
func uploadedContent(r *http.Request) (simplemedia.ContentInput, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	file, header, err := r.FormFile(uploadField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return simplemedia.HandleContent{File: simplemedia.NewMemoryFile(header.Filename, data)}, nil
}
