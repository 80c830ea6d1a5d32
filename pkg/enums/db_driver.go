package enums

import "fmt"

// DBDriver selects the gorm dialector backing the SQL query source.
type DBDriver string

const (
	DBDriverPostgres DBDriver = "postgres"
	DBDriverSQLite   DBDriver = "sqlite"
)

var validDBDriverValues = []DBDriver{
	DBDriverPostgres,
	DBDriverSQLite,
}

// String implements fmt.Stringer.
func (d DBDriver) String() string {
	return string(d)
}

// IsValid reports whether the value is a known db driver.
func (d DBDriver) IsValid() bool {
	for _, candidate := range validDBDriverValues {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDBDriver converts the raw string to a DBDriver.
func ParseDBDriver(value string) (DBDriver, error) {
	for _, candidate := range validDBDriverValues {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid db driver %q", value)
}
