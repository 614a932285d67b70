// Package catalog holds the ordered list of lesion classes the classifier
// was trained on. Position i in the catalog is the class for position i of
// the model output vector.
package catalog

import "fmt"

type MedicalCategory int

const (
	Benign MedicalCategory = iota
	Malignant
	PreCancerous
	Varied
)

func (c MedicalCategory) String() string {
	switch c {
	case Benign:
		return "Benign"
	case Malignant:
		return "Malignant"
	case PreCancerous:
		return "Pre-cancerous"
	case Varied:
		return "Varied (mostly benign, rarely malignant)"
	default:
		return fmt.Sprintf("MedicalCategory(%d)", int(c))
	}
}

func (c MedicalCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

type LesionClass struct {
	DisplayName string          `json:"display_name"`
	Category    MedicalCategory `json:"medical_category"`
}

// Catalog is immutable once built. Entries are returned by value.
type Catalog struct {
	classes []LesionClass
}

// lesionClasses follows the label order used at training time. Do not
// reorder without retraining or re-exporting the model.
var lesionClasses = []LesionClass{
	{"Actinic Keratosis (Solar Keratosis)", PreCancerous},
	{"Basal Cell Carcinoma (Carcinoma Basocellulare)", Malignant},
	{"Dermatofibroma (Histiofibroma)", Benign},
	{"Kaposi Sarcoma (Sarcoma Kaposi)", Malignant},
	{"Melanocytic Nevus (Naevus Melanocyticus)", Benign},
	{"Melanoma (Melanoma Malignum)", Malignant},
	{"Pigmented Benign Keratosis (Keratosis Seborrhoica Pigmentosa)", Benign},
	{"Seborrheic Keratosis (Keratosis Seborrhoica)", Benign},
	{"Solar Lentigo (Lentigo Senilis)", Benign},
	{"Squamous Cell Carcinoma (Carcinoma Squamocellulare)", Malignant},
	{"Vascular Lesions (Lesio Vascularis)", Varied},
}

// Lesions returns the skin-lesion catalog.
func Lesions() Catalog {
	return New(lesionClasses)
}

// New copies classes into a Catalog.
func New(classes []LesionClass) Catalog {
	c := make([]LesionClass, len(classes))
	copy(c, classes)
	return Catalog{classes: c}
}

func (c Catalog) Len() int {
	return len(c.classes)
}

func (c Catalog) At(i int) (LesionClass, error) {
	if i < 0 || i >= len(c.classes) {
		return LesionClass{}, &LabelMappingError{Expected: len(c.classes), Index: i}
	}
	return c.classes[i], nil
}

// Classes returns a copy of the entries in catalog order.
func (c Catalog) Classes() []LesionClass {
	out := make([]LesionClass, len(c.classes))
	copy(out, c.classes)
	return out
}

// CheckWidth verifies that a model output of the given width maps 1:1 onto
// the catalog.
func (c Catalog) CheckWidth(width int) error {
	if width != len(c.classes) {
		return &LabelMappingError{Expected: len(c.classes), Got: width, Index: -1}
	}
	return nil
}
