package passbook

import "fmt"

// RGB formats a pass color in the "rgb(r, g, b)" form wallets accept for
// backgroundColor, foregroundColor and labelColor.
func RGB(r, g, b uint8) string {
	return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
}
