package simulator

import (
	"diagnostics-recorder/engine/internal/logger"

	"github.com/pkg/errors"
)

func init() {
	Register("dashboard", func(r *logger.Recorder) Source { return &dashboard{rec: r} })
	Register("orders", func(r *logger.Recorder) Source { return &orders{rec: r} })
	Register("utils", func(r *logger.Recorder) Source { return &utils{rec: r} })
	Register("device", func(r *logger.Recorder) Source { return &device{rec: r} })
}

var errLinkTimeout = errors.New("link timeout")

type dashboard struct {
	rec *logger.Recorder
}

func (d *dashboard) Name() string { return "dashboard" }
func (d *dashboard) Category() logger.Category { return logger.CategoryDashboard }

func (d *dashboard) Step(tick int) {
	switch {
	case tick == 0:
		d.rec.Info(logger.CategoryDashboard, "Loaded")
	case tick%7 == 0:
		d.rec.Warnf(logger.CategoryDashboard, "render took %dms", 120+tick%50)
	default:
		d.rec.Debugf(logger.CategoryDashboard, "refreshed %d tiles", 4+tick%3)
	}
}

// orders walks a fixed order lifecycle, one transition per tick
type orders struct {
	rec    *logger.Recorder
	nextID int
}

func (o *orders) Name() string { return "orders" }
func (o *orders) Category() logger.Category { return logger.CategoryOrders }

func (o *orders) Step(tick int) {
	switch tick % 5 {
	case 0:
		o.nextID++
		o.rec.Infof(logger.CategoryOrders, "order #%d created", o.nextID)
	case 1:
		o.rec.Debugf(logger.CategoryOrders, "order #%d submitted", o.nextID)
	case 2:
		o.rec.Infof(logger.CategoryOrders, "order #%d accepted", o.nextID)
	case 3:
		if o.nextID%3 == 0 {
			o.rec.Status(logger.CategoryOrders, 409, "order rejected: stale quote")
			return
		}
		o.rec.Infof(logger.CategoryOrders, "order #%d filled", o.nextID)
	case 4:
		if o.nextID%4 == 0 {
			err := errors.Wrapf(errLinkTimeout, "confirm order #%d", o.nextID)
			o.rec.ErrorWithCause(logger.CategoryOrders, "receipt not printed", err)
			return
		}
		// status path with no diagnostic is dropped by the recorder
		o.rec.Status(logger.CategoryOrders, -1, "")
	}
}

type utils struct {
	rec *logger.Recorder
}

func (u *utils) Name() string { return "utils" }
func (u *utils) Category() logger.Category { return logger.CategoryUtils }

func (u *utils) Step(tick int) {
	if tick%10 == 9 {
		u.rec.Infof(logger.CategoryUtils, "cache compacted, %d keys evicted", tick/10+1)
		return
	}
	u.rec.Verbosef(logger.CategoryUtils, "heartbeat %d", tick)
}

// device alternates between healthy reads and link faults
type device struct {
	rec    *logger.Recorder
	faults int
}

func (d *device) Name() string { return "device" }
func (d *device) Category() logger.Category { return logger.CategoryDevice }

func (d *device) Step(tick int) {
	switch {
	case tick%11 == 10:
		d.faults++
		err := errors.Wrap(errLinkTimeout, "read sensor frame")
		d.rec.ErrorWithCause(logger.CategoryDevice, "device read failed", err)
	case tick%6 == 5:
		d.rec.Warnf(logger.CategoryDevice, "signal weak, %d faults so far", d.faults)
	default:
		d.rec.Verbosef(logger.CategoryDevice, "frame %d ok", tick)
	}
}
