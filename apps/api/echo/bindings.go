package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/schedule"
)

var filterParams = []string{"section", "teacher", "venue", "day", "time"}

// EntryFilter narrows a listing of entries down by exact field values.
type EntryFilter struct {
	fields map[string]string
}

func (f *EntryFilter) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	for _, param := range filterParams {
		val := core.CleanString(data.Get(param))
		if val == "" {
			continue
		}
		if f.fields == nil {
			f.fields = make(map[string]string, len(filterParams))
		}
		f.fields[param] = val
	}
}

func (f *EntryFilter) Apply(entries []schedule.Entry) []schedule.Entry {
	if len(f.fields) == 0 {
		return entries
	}
	return lo.Filter(entries, func(e schedule.Entry, _ int) bool {
		rec := map[string]string{
			"section": e.Section,
			"teacher": e.Teacher,
			"venue":   e.Venue,
			"day":     string(e.Day),
			"time":    string(e.TimeSlot),
		}
		for param, val := range f.fields {
			if rec[param] != val {
				return false
			}
		}
		return true
	})
}
