package catalog

// Slot names.
const (
	SlotWeight      = "weight"
	SlotWeekNumber  = "week_number"
	SlotDate        = "date"
	SlotTime        = "time"
	SlotSystolic    = "systolic"
	SlotDiastolic   = "diastolic"
	SlotSymptom     = "symptom"
	SlotSeverity    = "severity"
	SlotMedicine    = "medicine"
	SlotDosage      = "dosage"
	SlotFrequency   = "frequency"
	SlotColor       = "color"
	SlotConsistency = "consistency"
	SlotAmount      = "amount"
	SlotMood        = "mood"
	SlotHours       = "hours"
	SlotQuality     = "quality"
	SlotTitle       = "title"
	SlotLocation    = "location"
	SlotNewDate     = "new_date"
	SlotNewTime     = "new_time"
	SlotReference   = "reference"
	SlotTask        = "task"
	SlotDueDate     = "due_date"
	SlotCategory    = "category"
	SlotScreen      = "screen"
)

// questions are the follow-up prompts asked for a missing slot.
var questions = map[string]string{
	SlotWeight:      "What is your weight (for example 65 kg)?",
	SlotWeekNumber:  "Which pregnancy week is this?",
	SlotDate:        "What date?",
	SlotTime:        "What time?",
	SlotSystolic:    "What is the systolic (top) number?",
	SlotDiastolic:   "What is the diastolic (bottom) number?",
	SlotSymptom:     "What symptom are you having?",
	SlotSeverity:    "How severe is it: mild, moderate or severe?",
	SlotMedicine:    "Which medicine?",
	SlotDosage:      "What dose?",
	SlotFrequency:   "How often do you take it?",
	SlotColor:       "What color is it?",
	SlotConsistency: "What is the consistency?",
	SlotAmount:      "How much: light, moderate or heavy?",
	SlotMood:        "How are you feeling?",
	SlotHours:       "How many hours did you sleep?",
	SlotQuality:     "How well did you sleep?",
	SlotTitle:       "What is the appointment for?",
	SlotLocation:    "Where is it?",
	SlotNewDate:     "What date should it move to?",
	SlotNewTime:     "What time should it move to?",
	SlotReference:   "Which one?",
	SlotTask:        "Which task?",
	SlotDueDate:     "When is it due?",
	SlotCategory:    "Which kind of records?",
	SlotScreen:      "Which screen?",
}

// KnownSlot reports whether name is a slot the filler can extract.
func KnownSlot(name string) bool {
	_, ok := questions[name]
	return ok
}

// Question returns the follow-up prompt for a slot.
func Question(slot string) string {
	if q, ok := questions[slot]; ok {
		return q
	}
	return "Could you tell me the " + slot + "?"
}
