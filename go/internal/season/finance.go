package season

import (
	"fmt"

	"github.com/mcdev12/touchline/go/internal/models"
	"github.com/mcdev12/touchline/go/internal/roster"
)

// payWages deducts the weekly wage bill. Budgets may go negative; debt is
// settled at season end.
func payWages(club *models.Club, scope roster.Scope) []models.Notification {
	bill := club.WageBill()
	wasSolvent := club.Budget >= 0
	club.Budget -= bill
	club.Ledger.WageExpense += bill

	if club.Human && wasSolvent && club.Budget < 0 {
		return []models.Notification{models.NewNotification(scope.Week, models.SeverityWarning, club.ID, scope.At,
			fmt.Sprintf("Wages of %s pushed the club into debt (%s)", models.Money(bill), models.Money(club.Budget)))}
	}
	return nil
}

// matchdayIncome credits ticket sales for a home fixture. Attendance
// follows fan mood with a floor of 40 percent.
func matchdayIncome(club *models.Club) int64 {
	fill := 0.4 + 0.6*float64(club.Fans.Mood)/100
	income := int64(float64(club.Stadium.Capacity) * fill * float64(club.Stadium.TicketPrice))
	club.Budget += income
	club.Ledger.MatchdayIncome += income
	return income
}
