package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/store-admin/internal/domain/product"
	"github.com/xenking/store-admin/internal/imaging"
)

const (
	fieldIsAvailable = "is_available"
	fieldDatetime    = "Datetime"
	fieldImageX      = "image_x"
	fieldImageY      = "image_y"

	formMemory = 8 << 20

	msgRequired    = "This field is required."
	msgNumber      = "Enter a number."
	msgWholeNumber = "Enter a whole number."
	msgDatetime    = "Enter a valid date/time."
)

var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// form reads typed values out of a parsed multipart form and records
// per-field errors.
type form struct {
	r    *http.Request
	errs *product.ValidationError
}

// parseForm parses a multipart (or urlencoded) body of at most the upload
// ceiling plus one megabyte for the other fields.
func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) (*form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, int64(h.maxUploadMB+1)<<20)

	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		err = r.ParseMultipartForm(formMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			verr := &product.ValidationError{}
			verr.Add(product.FieldImages, (&imaging.SizeLimitError{LimitMB: h.maxUploadMB}).Error())
			return nil, verr
		}
		return nil, fmt.Errorf("%w: %v", errBadForm, err)
	}
	return &form{r: r, errs: &product.ValidationError{}}, nil
}

func (f *form) str(name string) string {
	return strings.TrimSpace(f.r.FormValue(name))
}

func (f *form) required(name string) (string, bool) {
	v := f.str(name)
	if v == "" {
		f.errs.Add(name, msgRequired)
		return "", false
	}
	return v, true
}

func (f *form) float(name string) float64 {
	v, ok := f.required(name)
	if !ok {
		return 0
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		f.errs.Add(name, msgNumber)
		return 0
	}
	return n
}

// fields reads the editable product attributes.
func (f *form) fields() product.Fields {
	var out product.Fields
	out.Name = f.str(product.FieldName)
	out.Description = f.str(product.FieldDescription)
	out.Location = f.str(product.FieldLocation)

	if v, ok := f.required(product.FieldPrice); ok {
		price, err := decimal.NewFromString(v)
		if err != nil {
			f.errs.Add(product.FieldPrice, msgNumber)
		}
		out.Price = price
	}

	if v, ok := f.required(product.FieldStock); ok {
		stock, err := strconv.Atoi(v)
		if err != nil {
			f.errs.Add(product.FieldStock, msgWholeNumber)
		}
		out.Stock = stock
	}

	if v := f.str(product.FieldCategory); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			f.errs.Add(product.FieldCategory, "Select a valid choice. That choice is not one of the available choices.")
		}
		out.CategoryID = id
	}

	switch f.str(fieldIsAvailable) {
	case "available":
		out.IsAvailable = true
	case "not_available":
		out.IsAvailable = false
	case "":
		f.errs.Add(fieldIsAvailable, msgRequired)
	default:
		f.errs.Add(fieldIsAvailable, "Invalid data.")
	}

	if v := f.str(fieldDatetime); v != "" {
		if t, ok := parseDatetime(v); ok {
			out.Datetime = &t
		} else {
			f.errs.Add(fieldDatetime, msgDatetime)
		}
	}
	return out
}

// upload reads the image in file field together with its crop rectangle.
func (f *form) upload(field string) product.ImageUpload {
	img := product.ImageUpload{
		Crop: imaging.Rect{
			X: f.float(fieldImageX),
			Y: f.float(fieldImageY),
			W: f.float(product.FieldImageW),
			H: f.float(product.FieldImageH),
		},
	}

	file, _, err := f.r.FormFile(field)
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) {
			f.errs.Add(field, "The submitted data was not a file.")
		}
		return img
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		f.errs.Add(field, fmt.Sprintf("Upload a valid image. %v", err))
		return img
	}
	img.Data = data
	return img
}

func parseDatetime(v string) (time.Time, bool) {
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}
