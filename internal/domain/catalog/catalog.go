// Package catalog holds the static list of medical services offered at a
// mission. Each service code prefixes the patient identifiers minted for it.
package catalog

// Service categories.
const (
	CategoryMedical = "medical"
	CategoryDental  = "dental"
	CategoryEye     = "eye"
	CategoryTherapy = "therapy"
	CategoryOB      = "ob"
)

type Service struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Catalog is an immutable, ordered set of services.
type Catalog struct {
	services []Service
	byCode   map[string]int
}

var defaultServices = []Service{
	{Code: "MA", Name: "Medical Adult", Description: "General medical consultation for adults", Category: CategoryMedical},
	{Code: "MP", Name: "Medical Pedia", Description: "Pediatric medical consultation", Category: CategoryMedical},
	{Code: "MD", Name: "Medical Derma", Description: "Dermatology consultation", Category: CategoryMedical},
	{Code: "DE", Name: "Dental Extraction", Description: "Tooth extraction service", Category: CategoryDental},
	{Code: "ES", Name: "Eye Screening", Description: "Vision and eye health screening", Category: CategoryEye},
	{Code: "PT", Name: "Physical Therapy", Description: "Physical therapy and rehabilitation", Category: CategoryTherapy},
	{Code: "OBP", Name: "OB Prenatal Checkup", Description: "Prenatal care and checkup", Category: CategoryOB},
	{Code: "OBC", Name: "OB Cervical Cancer Screening", Description: "Cervical cancer screening", Category: CategoryOB},
}

// Default returns the catalogue shipped with medmission.
func Default() *Catalog {
	return New(defaultServices)
}

// New builds a catalogue from services. A later duplicate code is ignored.
func New(services []Service) *Catalog {
	c := &Catalog{byCode: make(map[string]int, len(services))}
	for _, s := range services {
		if _, dup := c.byCode[s.Code]; dup {
			continue
		}
		c.byCode[s.Code] = len(c.services)
		c.services = append(c.services, s)
	}
	return c
}

// All returns a copy of every service in catalogue order.
func (c *Catalog) All() []Service {
	out := make([]Service, len(c.services))
	copy(out, c.services)
	return out
}

func (c *Catalog) ByCode(code string) (Service, bool) {
	i, ok := c.byCode[code]
	if !ok {
		return Service{}, false
	}
	return c.services[i], true
}

// Has reports whether code is in the catalogue.
func (c *Catalog) Has(code string) bool {
	_, ok := c.byCode[code]
	return ok
}

// DisplayName returns the service name, or the code itself when unknown.
func (c *Catalog) DisplayName(code string) string {
	if s, ok := c.ByCode(code); ok {
		return s.Name
	}
	return code
}

// Categories returns the distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range c.services {
		if seen[s.Category] {
			continue
		}
		seen[s.Category] = true
		out = append(out, s.Category)
	}
	return out
}

// InCategory returns the services of one category in catalogue order.
func (c *Catalog) InCategory(category string) []Service {
	var out []Service
	for _, s := range c.services {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out
}
