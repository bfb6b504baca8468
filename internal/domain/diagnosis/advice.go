package diagnosis

// healthAdvice holds per-disease self-care guidance shown to Deluxe
// subscribers alongside a diagnosis.
var healthAdvice = map[string]string{
	"Common Cold":    "• Stay hydrated by drinking plenty of fluids\n• Get adequate rest\n• Consider using a humidifier\n• Consult a doctor if symptoms persist beyond 10 days",
	"Fever":          "• Stay hydrated with water and clear fluids\n• Rest in a cool environment\n• Monitor your temperature regularly\n• Seek medical attention if fever exceeds 103°F (39.4°C)",
	"Headache":       "• Apply a cold or warm compress to your head\n• Stay hydrated\n• Try relaxation techniques\n• Avoid known triggers\n• See a doctor for severe or persistent headaches",
	"Stomach Upset":  "• Eat bland foods like toast or rice\n• Stay hydrated with clear fluids\n• Avoid dairy and fatty foods\n• Rest and avoid strenuous activity\n• Consult a doctor if symptoms worsen",
	"Allergies":      "• Avoid known allergens when possible\n• Keep windows closed during high pollen days\n• Shower after being outdoors\n• Use air purifiers indoors\n• Track your symptoms to identify triggers",
	"Cough":          "• Stay hydrated to thin mucus\n• Use a humidifier or breathe steam\n• Avoid irritants like smoke\n• Try throat lozenges for sore throat\n• See a doctor if cough persists beyond 2 weeks",
}

const defaultAdvice = "• Follow medication instructions carefully\n• Stay hydrated and get adequate rest\n• Monitor your symptoms\n• Consult a healthcare professional if symptoms worsen"

// Advice returns self-care guidance for a disease, falling back to generic
// advice for diseases without a dedicated entry.
func Advice(diseaseName string) string {
	if advice, ok := healthAdvice[diseaseName]; ok {
		return advice
	}
	return defaultAdvice
}
