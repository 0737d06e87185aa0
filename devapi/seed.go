package devapi

import (
	"github.com/layer-3/portal/core"
	"github.com/shopspring/decimal"
)

// DemoEmail and DemoPassword sign in to the seeded account
const (
	DemoEmail    = "student@webmail.uad.ac.id"
	DemoPassword = "student123"
)

// DefaultStudyPrograms is the study program list served by the development API
func DefaultStudyPrograms() []core.StudyProgram {
	return []core.StudyProgram{
		{ID: 1, Name: "Informatika"},
		{ID: 2, Name: "Sistem Informasi"},
		{ID: 3, Name: "Teknik Elektro"},
	}
}

// DemoSchedules is the timetable of the seeded account
func DemoSchedules() []core.Schedule {
	lecturer := "Dr. Rahmawati"
	return []core.Schedule{
		{
			ClassCode:    "A",
			CourseCode:   "IF1201",
			CourseName:   "Algoritma dan Pemrograman",
			Day:          "Senin",
			StartTime:    "07:30",
			EndTime:      "10:00",
			Lecturer:     &lecturer,
			RoomNumber:   "4.1.2",
			Semester:     "2",
			Credits:      decimal.NewFromInt(3),
			StudyProgram: "Informatika",
		},
		{
			ClassCode:    "B",
			CourseCode:   "IF1305",
			CourseName:   "Basis Data",
			Day:          "Rabu",
			StartTime:    "10:15",
			EndTime:      "12:00",
			RoomNumber:   "4.2.1",
			Semester:     "2",
			Credits:      decimal.NewFromInt(2),
			StudyProgram: "Informatika",
		},
	}
}
