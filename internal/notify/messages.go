package notify

import "fmt"

// DigestMessage renders the admin digest text.
func DigestMessage(count, points int64) string {
	return fmt.Sprintf("🧾 Pending withdrawals: %d (%d points) awaiting payout.", count, points)
}

// WelcomeMessage is the Markdown reply to /start.
func WelcomeMessage(fullName string) string {
	return fmt.Sprintf("🌟 *Welcome to Refer & Earn, %s!* 🌟\n"+
		"Get ready to earn points by inviting friends and completing exciting tasks!\n"+
		"✨ *Your journey starts here!*\n"+
		"Use the Mini App below to begin.", fullName)
}
