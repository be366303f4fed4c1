// Package atmosphere models the ambient fluid a balloon flies through.
//
// [StandardAtmosphere1976] is a piecewise fit of the US Standard Atmosphere
// (1976) over three bands, each a closed-open interval in meters above sea
// level:
//
//	[-56, 11000)     T = 15.04 - 0.00649·h °C       P = 101.29·(T/288.08)^5.256 kPa
//	[11000, 25000)   T = -56.46 °C                  P = 22.65·exp(1.73 - 0.000157·h) kPa
//	[25000, 85000]   T = -131.21 + 0.00299·h °C     P = 2.488·(T/216.6)^-11.388 kPa
//
// Pressure formulas take the band temperature in kelvin. Density follows
// from the ideal-gas law for dry air. The top band includes 85000 m so the
// whole documented domain resolves to exactly one band.
//
// Queries outside [-56, 85000] m fail with [*AltitudeOutOfBoundsError]; the
// model never clamps. Results are recomputed on every call.
package atmosphere
