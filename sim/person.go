package sim

import "fmt"

// Person is a household member.
// Age, sex and licence are fixed; zone assignments may be changed by later stages.
type Person struct {
	age              int
	female           bool
	driversLicense   bool
	employmentStatus int
	occupation       int

	// EmploymentZone is the flat zone index of the work place, or NoZone.
	EmploymentZone int
	// SchoolZone is the flat zone index of the school, or NoZone.
	SchoolZone int

	chains []*TripChain
	attrs  Attributes
}

// PersonConfig groups the attributes a loader reads for one person.
type PersonConfig struct {
	Age              int
	Female           bool
	DriversLicense   bool
	EmploymentStatus int
	Occupation       int
}

// NewPerson creates a person with no trips and no zone assignments.
func NewPerson(cfg PersonConfig) *Person {
	return &Person{
		age:              cfg.Age,
		female:           cfg.Female,
		driversLicense:   cfg.DriversLicense,
		employmentStatus: cfg.EmploymentStatus,
		occupation:       cfg.Occupation,
		EmploymentZone:   NoZone,
		SchoolZone:       NoZone,
	}
}

// Age returns the person's age in years.
func (p *Person) Age() int { return p.age }

// Female reports whether the person is female.
func (p *Person) Female() bool { return p.female }

// DriversLicense reports whether the person holds a driver's licence.
func (p *Person) DriversLicense() bool { return p.driversLicense }

// EmploymentStatus returns the employment status category index.
func (p *Person) EmploymentStatus() int { return p.employmentStatus }

// Occupation returns the occupation category index.
func (p *Person) Occupation() int { return p.occupation }

// Adult reports age >= 18.
func (p *Person) Adult() bool { return p.age >= 18 }

// Child reports age < 11.
func (p *Person) Child() bool { return p.age < 11 }

// Youth reports age in [11, 15].
func (p *Person) Youth() bool { return p.age >= 11 && p.age <= 15 }

// YoungAdult reports age in [16, 19].
func (p *Person) YoungAdult() bool { return p.age >= 16 && p.age <= 19 }

// SetTripChains assigns the person's trip chains. A nil slice is rejected; an empty
// one means the person made no trips.
func (p *Person) SetTripChains(chains []*TripChain) error {
	if chains == nil {
		return fmt.Errorf("%w: nil trip chains", ErrInvalidArgument)
	}
	p.chains = chains
	return nil
}

// TripChains returns the person's trip chains in order.
func (p *Person) TripChains() []*TripChain { return p.chains }

// Attributes returns the person's extension store.
func (p *Person) Attributes() *Attributes { return &p.attrs }
