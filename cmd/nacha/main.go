// Command nacha assembles NACHA ACH files from a YAML manifest.
//
// USAGE:
//
//	nacha build -m payroll.yaml -o payroll.ach
//	nacha routing 021000021 123456789
//	nacha verify payroll.ach
//	nacha version
package main

func main() {
	Execute()
}
