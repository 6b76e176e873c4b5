// Command nrusim runs NR-U spectrum sharing simulations: gNB traffic on
// unlicensed sub-bands contending with WiFi through listen-before-talk,
// with a periodic engine reassigning users between the sub-bands.
package main

import (
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is fine; flags keep their built-in defaults.
	_ = godotenv.Load()

	Execute()
}
