package units

const (
	// StandardGravity is g0.
	StandardGravity Acceleration = 9.80665

	// GasConstant is the molar gas constant R.
	GasConstant MolarHeatCapacity = 8.314

	// EarthRadius is the mean radius of the Earth.
	EarthRadius Length = 6371007.2

	// StandardTemperature and StandardPressure define STP.
	StandardTemperature Temperature = 273.15
	StandardPressure    Pressure    = 101325.0

	// SeaLevelTemperature is the ISA sea-level temperature (15 °C).
	SeaLevelTemperature Temperature = 288.15
)
