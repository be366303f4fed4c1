// Package units provides dimensionally-typed physical quantities and the
// constants used throughout the balloon force model.
//
// Every quantity is a distinct named float64 type holding its SI base value:
//
//   - [Length]: meters
//   - [Mass]: kilograms
//   - [Temperature]: kelvin
//   - [Pressure]: pascals
//   - [Density]: kilograms per cubic meter
//   - [Volume], [Area]: cubic and square meters
//   - [Force]: newtons
//   - [Acceleration], [Velocity]: m/s² and m/s
//   - [MolarMass]: kilograms per mole
//
// Because the types are distinct, adding a [Pressure] to a [Temperature]
// does not compile. Quantities of the same dimension add and subtract with
// the ordinary operators; products and quotients across dimensions go
// through explicit functions that name the resulting dimension:
//
//	rho := units.KilogramsPerCubicMeter(1.225)
//	v := units.CubicMeters(1000)
//	m := units.MassOf(rho, v) // units.Mass
//
// Non-SI input and output units are handled with constructors and
// accessors ([Celsius], [Temperature.Celsius], [Kilopascals],
// [Pressure.Kilopascals]).
//
// All constants are typed compile-time values; there is no lazily
// initialised global state.
package units
