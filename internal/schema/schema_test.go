package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatures_OrderAndCount(t *testing.T) {
	require.Len(t, Features, NumFeatures)

	want := []string{
		"HighBP", "HighChol", "CholCheck", "BMI", "Smoker", "Stroke",
		"HeartDiseaseorAttack", "PhysActivity", "Fruits", "Veggies",
		"HvyAlcoholConsump", "AnyHealthcare", "NoDocbcCost", "GenHlth",
		"MentHlth", "PhysHlth", "DiffWalk", "Sex", "Age", "Education", "Income",
	}
	assert.Equal(t, want, Names())
	assert.True(t, SameOrder(want))

	swapped := append([]string(nil), want...)
	swapped[0], swapped[1] = swapped[1], swapped[0]
	assert.False(t, SameOrder(swapped))
	assert.False(t, SameOrder(want[:20]))
}

func TestDefaults(t *testing.T) {
	defaults := map[string]float64{
		"highBP": 0, "highChol": 0, "cholCheck": 1, "bmi": 25.0, "smoker": 0,
		"stroke": 0, "heartDiseaseorAttack": 0, "physActivity": 1, "fruits": 1,
		"veggies": 1, "hvyAlcoholConsump": 0, "anyHealthcare": 1, "noDocbcCost": 0,
		"genHlth": 3, "mentHlth": 0, "physHlth": 0, "diffWalk": 0, "sex": 0,
		"age": 5, "education": 3, "income": 5,
	}
	require.Len(t, defaults, NumFeatures)

	vec := Defaults()
	for field, want := range defaults {
		idx := IndexOf(field)
		require.GreaterOrEqual(t, idx, 0, field)
		assert.Equal(t, want, vec[idx], field)
	}
}

func TestFieldNamesAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, f := range Features {
		assert.False(t, seen[f.Field], "duplicate field %s", f.Field)
		assert.False(t, seen[f.Name], "duplicate name %s", f.Name)
		seen[f.Field] = true
		seen[f.Name] = true
	}
	assert.Equal(t, -1, IndexOf("glucose"))
}

func TestBinaryLabel(t *testing.T) {
	in := []float64{0, 1, 2, 2, 0, 1, 2, 0}
	want := []int{0, 0, 1, 1, 0, 0, 1, 0}
	for i, v := range in {
		assert.Equal(t, want[i], BinaryLabel(v), "value %v", v)
	}
	assert.Equal(t, 0, BinaryLabel(2.5))
	assert.Equal(t, 0, BinaryLabel(3))
}
