// Package schema is the single definition of the diabetes feature vector.
// The trainer, the prediction service and the API client all read feature
// order, dataset column names, client field names and request defaults from
// here.
package schema

// LabelColumn is the multi-class indicator column in the training dataset.
const LabelColumn = "Diabetes_012"

// DiabeticClass is the LabelColumn value that maps to the positive label.
// Every other value (0 = no diabetes, 1 = prediabetes) maps to 0.
const DiabeticClass = 2

// Feature describes one position of the feature vector.
type Feature struct {
	Name    string  // dataset column, also the name the scaler was fit with
	Field   string  // JSON field accepted by the prediction API
	Default float64 // substituted when the client omits Field
	Help    string
}

// Features is ordered exactly as the model consumes them.
var Features = []Feature{
	{Name: "HighBP", Field: "highBP", Default: 0, Help: "high blood pressure (0/1)"},
	{Name: "HighChol", Field: "highChol", Default: 0, Help: "high cholesterol (0/1)"},
	{Name: "CholCheck", Field: "cholCheck", Default: 1, Help: "cholesterol check in the last 5 years (0/1)"},
	{Name: "BMI", Field: "bmi", Default: 25.0, Help: "body mass index"},
	{Name: "Smoker", Field: "smoker", Default: 0, Help: "smoked at least 100 cigarettes (0/1)"},
	{Name: "Stroke", Field: "stroke", Default: 0, Help: "ever had a stroke (0/1)"},
	{Name: "HeartDiseaseorAttack", Field: "heartDiseaseorAttack", Default: 0, Help: "coronary heart disease or myocardial infarction (0/1)"},
	{Name: "PhysActivity", Field: "physActivity", Default: 1, Help: "physical activity in the past 30 days (0/1)"},
	{Name: "Fruits", Field: "fruits", Default: 1, Help: "fruit once or more per day (0/1)"},
	{Name: "Veggies", Field: "veggies", Default: 1, Help: "vegetables once or more per day (0/1)"},
	{Name: "HvyAlcoholConsump", Field: "hvyAlcoholConsump", Default: 0, Help: "heavy drinker (0/1)"},
	{Name: "AnyHealthcare", Field: "anyHealthcare", Default: 1, Help: "any health care coverage (0/1)"},
	{Name: "NoDocbcCost", Field: "noDocbcCost", Default: 0, Help: "could not see a doctor because of cost (0/1)"},
	{Name: "GenHlth", Field: "genHlth", Default: 3, Help: "general health, 1 excellent .. 5 poor"},
	{Name: "MentHlth", Field: "mentHlth", Default: 0, Help: "days of poor mental health in the past 30"},
	{Name: "PhysHlth", Field: "physHlth", Default: 0, Help: "days of physical illness or injury in the past 30"},
	{Name: "DiffWalk", Field: "diffWalk", Default: 0, Help: "serious difficulty walking or climbing stairs (0/1)"},
	{Name: "Sex", Field: "sex", Default: 0, Help: "0 female, 1 male"},
	{Name: "Age", Field: "age", Default: 5, Help: "13-level age category, 1 = 18-24 .. 13 = 80+"},
	{Name: "Education", Field: "education", Default: 3, Help: "education level, 1 .. 6"},
	{Name: "Income", Field: "income", Default: 5, Help: "income scale, 1 .. 8"},
}

// NumFeatures is the length of every feature vector.
const NumFeatures = 21

// Names returns the dataset column names in vector order.
func Names() []string {
	names := make([]string, len(Features))
	for i, f := range Features {
		names[i] = f.Name
	}
	return names
}

// Defaults returns the vector a request with no fields at all maps to.
func Defaults() []float64 {
	v := make([]float64, len(Features))
	for i, f := range Features {
		v[i] = f.Default
	}
	return v
}

// IndexOf returns the vector position of a dataset column or client field,
// or -1 if neither matches.
func IndexOf(name string) int {
	for i, f := range Features {
		if f.Name == name || f.Field == name {
			return i
		}
	}
	return -1
}

// BinaryLabel collapses a Diabetes_012 value to the model's binary label.
func BinaryLabel(v float64) int {
	if v == DiabeticClass {
		return 1
	}
	return 0
}

// SameOrder reports whether names matches the canonical feature order.
func SameOrder(names []string) bool {
	if len(names) != len(Features) {
		return false
	}
	for i, f := range Features {
		if names[i] != f.Name {
			return false
		}
	}
	return true
}
