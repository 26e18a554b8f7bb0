package usecase

import "time"

const dateLayout = "2006-01-02"

// Clock — единственный источник "сейчас" для всех календарных расчетов.
// Исходник считал даты то в локальном времени устройства, то в UTC, и
// ломался на границе суток; здесь таймзона одна, задается конфигом.
type Clock interface {
	Now() time.Time
}

type realClock struct {
	loc *time.Location
}

func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return realClock{loc: loc}
}

func (c realClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// dateKey нормализует момент времени в календарный день приложения.
func dateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateLayout)
}
