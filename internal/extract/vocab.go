package extract

// Closed vocabularies. Multi-word phrases come before any single word they
// contain so the longer phrase wins.

var Symptoms = Vocab{
	{Value: "back pain", Phrases: []string{"back pain", "backache", "sore back"}},
	{Value: "morning sickness", Phrases: []string{"morning sickness"}},
	{Value: "shortness of breath", Phrases: []string{"shortness of breath", "short of breath", "breathless"}},
	{Value: "nausea", Phrases: []string{"nausea", "nauseous", "nauseated", "queasy"}},
	{Value: "headache", Phrases: []string{"headache", "headaches", "migraine"}},
	{Value: "cramps", Phrases: []string{"cramps", "cramping", "cramp"}},
	{Value: "fatigue", Phrases: []string{"fatigue", "fatigued", "exhausted", "exhaustion"}},
	{Value: "heartburn", Phrases: []string{"heartburn", "acid reflux", "reflux"}},
	{Value: "swelling", Phrases: []string{"swelling", "swollen"}},
	{Value: "dizziness", Phrases: []string{"dizziness", "dizzy", "lightheaded"}},
	{Value: "constipation", Phrases: []string{"constipation", "constipated"}},
	{Value: "bleeding", Phrases: []string{"bleeding"}},
	{Value: "spotting", Phrases: []string{"spotting"}},
	{Value: "vomiting", Phrases: []string{"vomiting", "vomited", "threw up", "throwing up"}},
	{Value: "insomnia", Phrases: []string{"insomnia"}},
}

var Severities = Vocab{
	{Value: "mild", Phrases: []string{"mild", "slight", "a little", "light"}},
	{Value: "moderate", Phrases: []string{"moderate", "medium"}},
	{Value: "severe", Phrases: []string{"severe", "bad", "terrible", "intense", "awful"}},
}

var Medicines = Vocab{
	{Value: "prenatal vitamin", Phrases: []string{"prenatal vitamins", "prenatal vitamin", "prenatals"}},
	{Value: "folic acid", Phrases: []string{"folic acid", "folate"}},
	{Value: "vitamin d", Phrases: []string{"vitamin d", "vitamin d3"}},
	{Value: "omega 3", Phrases: []string{"omega 3", "omega-3", "fish oil"}},
	{Value: "iron", Phrases: []string{"iron"}},
	{Value: "calcium", Phrases: []string{"calcium"}},
	{Value: "paracetamol", Phrases: []string{"paracetamol"}},
	{Value: "acetaminophen", Phrases: []string{"acetaminophen", "tylenol"}},
	{Value: "ibuprofen", Phrases: []string{"ibuprofen", "advil"}},
	{Value: "aspirin", Phrases: []string{"aspirin"}},
	{Value: "insulin", Phrases: []string{"insulin"}},
	{Value: "metformin", Phrases: []string{"metformin"}},
	{Value: "levothyroxine", Phrases: []string{"levothyroxine"}},
	{Value: "magnesium", Phrases: []string{"magnesium"}},
}

var Frequencies = Vocab{
	{Value: "once daily", Phrases: []string{"once daily", "once a day", "one time a day"}},
	{Value: "twice daily", Phrases: []string{"twice daily", "twice a day", "two times a day"}},
	{Value: "three times daily", Phrases: []string{"three times daily", "three times a day", "3 times a day"}},
	{Value: "every morning", Phrases: []string{"every morning", "each morning"}},
	{Value: "every night", Phrases: []string{"every night", "each night", "at bedtime", "before bed"}},
	{Value: "as needed", Phrases: []string{"as needed", "when needed", "if needed"}},
	{Value: "weekly", Phrases: []string{"weekly", "once a week", "every week"}},
	{Value: "daily", Phrases: []string{"daily", "every day", "each day"}},
}

var DischargeColors = Vocab{
	{Value: "clear", Phrases: []string{"clear", "transparent"}},
	{Value: "white", Phrases: []string{"white", "milky"}},
	{Value: "yellow", Phrases: []string{"yellow", "yellowish"}},
	{Value: "green", Phrases: []string{"green", "greenish"}},
	{Value: "brown", Phrases: []string{"brown", "brownish"}},
	{Value: "pink", Phrases: []string{"pink", "pinkish"}},
	{Value: "red", Phrases: []string{"red", "reddish", "bloody"}},
	{Value: "grey", Phrases: []string{"grey", "gray", "greyish", "grayish"}},
}

var DischargeConsistencies = Vocab{
	{Value: "watery", Phrases: []string{"watery", "thin", "runny"}},
	{Value: "thick", Phrases: []string{"thick"}},
	{Value: "sticky", Phrases: []string{"sticky", "tacky"}},
	{Value: "creamy", Phrases: []string{"creamy", "lotion"}},
	{Value: "lumpy", Phrases: []string{"lumpy", "clumpy", "cottage cheese"}},
	{Value: "mucus", Phrases: []string{"mucus", "mucusy", "stretchy", "egg white"}},
}

var DischargeAmounts = Vocab{
	{Value: "light", Phrases: []string{"light", "little", "small amount"}},
	{Value: "moderate", Phrases: []string{"moderate", "medium"}},
	{Value: "heavy", Phrases: []string{"heavy", "a lot", "lots", "large amount"}},
}

var Moods = Vocab{
	{Value: "happy", Phrases: []string{"happy", "great", "good", "joyful", "cheerful"}},
	{Value: "sad", Phrases: []string{"sad", "down", "low", "blue", "depressed"}},
	{Value: "anxious", Phrases: []string{"anxious", "worried", "nervous", "scared"}},
	{Value: "calm", Phrases: []string{"calm", "relaxed", "peaceful"}},
	{Value: "irritable", Phrases: []string{"irritable", "cranky", "grumpy", "annoyed"}},
	{Value: "tired", Phrases: []string{"tired", "sleepy", "drained"}},
	{Value: "excited", Phrases: []string{"excited", "thrilled"}},
	{Value: "stressed", Phrases: []string{"stressed", "overwhelmed"}},
	{Value: "emotional", Phrases: []string{"emotional", "teary", "weepy"}},
	{Value: "content", Phrases: []string{"content", "fine", "okay", "ok"}},
}

var SleepQualities = Vocab{
	{Value: "restless", Phrases: []string{"restless", "tossing and turning", "interrupted"}},
	{Value: "great", Phrases: []string{"great", "excellent", "amazing"}},
	{Value: "deep", Phrases: []string{"deep", "soundly", "like a baby"}},
	{Value: "good", Phrases: []string{"good", "well"}},
	{Value: "okay", Phrases: []string{"okay", "ok", "alright", "fine"}},
	{Value: "poor", Phrases: []string{"poor", "poorly", "bad", "badly", "terrible", "awful"}},
}

var AppointmentKinds = Vocab{
	{Value: "glucose test", Phrases: []string{"glucose test", "glucose screening", "gtt"}},
	{Value: "blood test", Phrases: []string{"blood test", "blood work", "bloodwork"}},
	{Value: "prenatal visit", Phrases: []string{"prenatal visit", "antenatal visit", "antenatal"}},
	{Value: "checkup", Phrases: []string{"checkup", "check-up", "check up"}},
	{Value: "ultrasound", Phrases: []string{"ultrasound", "sonogram"}},
	{Value: "scan", Phrases: []string{"scan", "anatomy scan", "dating scan"}},
	{Value: "dentist", Phrases: []string{"dentist", "dental"}},
	{Value: "midwife", Phrases: []string{"midwife"}},
	{Value: "vaccination", Phrases: []string{"vaccination", "vaccine", "flu shot"}},
}

var Screens = Vocab{
	{Value: "home", Phrases: []string{"home", "dashboard", "main screen"}},
	{Value: "settings", Phrases: []string{"settings", "preferences"}},
	{Value: "profile", Phrases: []string{"profile", "account"}},
	{Value: "calendar", Phrases: []string{"calendar", "appointments", "schedule"}},
	{Value: "journal", Phrases: []string{"journal", "diary", "logs"}},
	{Value: "analytics", Phrases: []string{"analytics", "charts", "insights", "stats"}},
	{Value: "tasks", Phrases: []string{"tasks", "todo list", "to-do list", "checklist"}},
}

// Categories maps user words to record category names.
var Categories = Vocab{
	{Value: "blood_pressure", Phrases: []string{"blood pressure", "bp"}},
	{Value: "appointment", Phrases: []string{"appointments", "appointment"}},
	{Value: "weight", Phrases: []string{"weight", "weights"}},
	{Value: "symptom", Phrases: []string{"symptoms", "symptom"}},
	{Value: "medicine", Phrases: []string{"medicine", "medicines", "medication", "medications", "meds", "pills"}},
	{Value: "discharge", Phrases: []string{"discharge"}},
	{Value: "mood", Phrases: []string{"mood", "moods"}},
	{Value: "sleep", Phrases: []string{"sleep"}},
	{Value: "task", Phrases: []string{"tasks", "task", "todo", "todos", "to-do"}},
}

// References are relative record references used to pick among candidates.
var References = Vocab{
	{Value: "first", Phrases: []string{"first", "earliest", "first one"}},
	{Value: "last", Phrases: []string{"last", "latest", "most recent", "last one"}},
}
