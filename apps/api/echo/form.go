package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/schedule"
)

// form buttons
const (
	generateButton      = "generate_timetable"
	classCheckButton    = "check_class_availability"
	facultyCheckButton  = "check_faculty_availability"
	generatedMessage    = "Timetable generated successfully!"
	indexTemplate       = "index.html"
	unknownActionReason = "unknown form action"
)

type formUI struct {
	svc        schedule.Service
	validate   *validator.Validate
	translator ut.Translator
}

// IndexPage is the data rendered by the index template.
type IndexPage struct {
	schedule.RosterView
	Section       string
	Timetable     schedule.Timetable
	Message       string
	Error         string
	ClassResult   *bool
	FacultyResult *bool
}

// TimetableDays lists the generated days in weekday order.
func (p IndexPage) TimetableDays() []schedule.Day {
	return p.Timetable.Days()
}

func (p IndexPage) ClassAvailable() bool {
	return p.ClassResult != nil && *p.ClassResult
}

func (p IndexPage) FacultyAvailable() bool {
	return p.FacultyResult != nil && *p.FacultyResult
}

func registerFormUI(app *echo.Echo, svc schedule.Service, validate *validator.Validate, translator ut.Translator) {
	ui := formUI{
		svc:        svc,
		validate:   validate,
		translator: translator,
	}

	app.GET("/", ui.index)
	app.POST("/", ui.submit)
}

func (ui *formUI) page() IndexPage {
	return IndexPage{RosterView: ui.svc.Roster()}
}

func (ui *formUI) index(ctx echo.Context) error {
	return ctx.Render(http.StatusOK, indexTemplate, ui.page())
}

func (ui *formUI) submit(ctx echo.Context) error {
	form, err := ctx.FormParams()
	if err != nil {
		return errors.Wrap(err, "parsing form")
	}

	page := ui.page()
	switch {
	case form.Has(generateButton):
		err = ui.generate(ctx, &page)
	case form.Has(classCheckButton):
		err = ui.checkClass(ctx, &page)
	case form.Has(facultyCheckButton):
		err = ui.checkFaculty(ctx, &page)
	default:
		page.Error = unknownActionReason
	}
	if err != nil {
		if page.Error = ui.userError(err); page.Error == "" {
			return err
		}
	}
	return ctx.Render(http.StatusOK, indexTemplate, page)
}

func (ui *formUI) generate(ctx echo.Context, page *IndexPage) error {
	data := schedule.GenerateRequest{Section: ctx.FormValue("section")}
	if err := data.Validate(ui.validate); err != nil {
		return err
	}
	page.Section = data.Section

	timetable, err := ui.svc.Generate(ctx.Request().Context(), data.Section)
	if err != nil {
		return errors.Wrap(err, "generating timetable")
	}
	page.Timetable = timetable
	page.Message = generatedMessage
	return nil
}

func (ui *formUI) checkClass(ctx echo.Context, page *IndexPage) error {
	var query schedule.VenueQuery
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to VenueQuery")
	}
	if err := query.Validate(ui.validate); err != nil {
		return err
	}

	available, err := ui.svc.CheckVenueAvailability(ctx.Request().Context(), query.Venue, query.Day, query.TimeSlot)
	if err != nil {
		return errors.Wrap(err, "checking venue availability")
	}
	page.ClassResult = &available
	return nil
}

func (ui *formUI) checkFaculty(ctx echo.Context, page *IndexPage) error {
	var query schedule.TeacherQuery
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to TeacherQuery")
	}
	if err := query.Validate(ui.validate); err != nil {
		return err
	}

	available, err := ui.svc.CheckTeacherAvailability(ctx.Request().Context(), query.Teacher, query.Day, query.TimeSlot)
	if err != nil {
		return errors.Wrap(err, "checking teacher availability")
	}
	page.FacultyResult = &available
	return nil
}

// userError returns the message shown on the page for `err`, or "" for server errors.
func (ui *formUI) userError(err error) string {
	code, message := errorResponse(err, ui.translator)
	if code == http.StatusInternalServerError {
		return ""
	}
	switch m := message.(type) {
	case string:
		return m
	case map[string]string:
		return core.JoinFieldErrors(m)
	}
	return core.CleanString(err.Error())
}
