package schedule

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ratiba/core"
)

var (
	weekdayTag  = "weekday"
	weekdayText = "must be a weekday (" + strings.Join(dayNames(), ", ") + ")"

	timeSlotTag  = "timeslot"
	timeSlotText = "must be one of the time slots (" + strings.Join(timeSlotNames(), ", ") + ")"

	formatTag  = "exportformat"
	formatText = "must be one of: " + strings.Join(Formats, ", ")
)

// InitValidators registers the schedule validation tags. It panics on a registration error.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.Must(validate.RegisterValidation(weekdayTag, weekdayValidation))
	core.Must(core.RegisterCustomTranslation(validate, translator, weekdayTag, weekdayText))

	core.Must(validate.RegisterValidation(timeSlotTag, timeSlotValidation))
	core.Must(core.RegisterCustomTranslation(validate, translator, timeSlotTag, timeSlotText))

	core.Must(validate.RegisterValidation(formatTag, formatValidation))
	core.Must(core.RegisterCustomTranslation(validate, translator, formatTag, formatText))
}

func weekdayValidation(fl validator.FieldLevel) bool {
	_, ok := ParseDay(fl.Field().String())
	return ok
}

func timeSlotValidation(fl validator.FieldLevel) bool {
	_, ok := ParseTimeSlot(fl.Field().String())
	return ok
}

func formatValidation(fl validator.FieldLevel) bool {
	_, ok := ParseFormat(fl.Field().String())
	return ok
}

type (
	GenerateRequest struct {
		Section string `json:"section" form:"section" param:"section" validate:"required"`
	}

	// VenueQuery asks whether a venue is free; the form names the venue field "venue".
	VenueQuery struct {
		Venue    string `json:"venue" form:"venue" query:"venue" validate:"required"`
		Day      string `json:"day" form:"day" query:"day" validate:"required,weekday"`
		TimeSlot string `json:"time" form:"time" query:"time" validate:"required,timeslot"`
	}

	TeacherQuery struct {
		Teacher  string `json:"teacher" form:"teacher" query:"teacher" validate:"required"`
		Day      string `json:"day" form:"day" query:"day" validate:"required,weekday"`
		TimeSlot string `json:"time" form:"time" query:"time" validate:"required,timeslot"`
	}

	SectionQuery struct {
		Section  string `json:"section" form:"section" query:"section" validate:"required"`
		Day      string `json:"day" form:"day" query:"day" validate:"required,weekday"`
		TimeSlot string `json:"time" form:"time" query:"time" validate:"required,timeslot"`
	}

	NewEntry struct {
		Section  string `json:"section" validate:"required"`
		Subject  string `json:"subject" validate:"required"`
		Teacher  string `json:"teacher" validate:"required"`
		Venue    string `json:"venue" validate:"required"`
		Day      string `json:"day" validate:"required,weekday"`
		TimeSlot string `json:"time" validate:"required,timeslot"`
	}

	ExportQuery struct {
		Format string `query:"format" json:"format" validate:"omitempty,exportformat"`
	}
)

func (r *GenerateRequest) Validate(validate *validator.Validate) error {
	r.Section = core.CleanString(r.Section)
	return validate.Struct(r)
}

func (q *VenueQuery) Validate(validate *validator.Validate) error {
	q.Venue = core.CleanString(q.Venue)
	return validate.Struct(q)
}

func (q *TeacherQuery) Validate(validate *validator.Validate) error {
	q.Teacher = core.CleanString(q.Teacher)
	return validate.Struct(q)
}

func (q *SectionQuery) Validate(validate *validator.Validate) error {
	q.Section = core.CleanString(q.Section)
	return validate.Struct(q)
}

func (ne *NewEntry) Validate(validate *validator.Validate) error {
	ne.Section = core.CleanString(ne.Section)
	ne.Subject = core.CleanString(ne.Subject)
	ne.Teacher = core.CleanString(ne.Teacher)
	ne.Venue = core.CleanString(ne.Venue)
	return validate.Struct(ne)
}

func (q *ExportQuery) Validate(validate *validator.Validate) error {
	q.Format = core.CleanString(q.Format, true /* lower */)
	return validate.Struct(q)
}

// parseKey resolves a (day, slot) pair exactly, reporting unknown values as a core.ValidationError.
func parseKey(name, day, slot string) (SlotKey, error) {
	d, dayOK := ParseDay(day)
	ts, slotOK := ParseTimeSlot(slot)
	if dayOK && slotOK {
		return SlotKey{Name: name, Day: d, TimeSlot: ts}, nil
	}
	var flds []core.FieldError
	if !dayOK {
		flds = append(flds, core.FieldError{Field: "day", Error: "day " + weekdayText})
	}
	if !slotOK {
		flds = append(flds, core.FieldError{Field: "time", Error: "time " + timeSlotText})
	}
	return SlotKey{}, core.NewValidationError(ErrInvalidQueryKey, flds...)
}
