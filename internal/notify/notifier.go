package notify

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"go-retail-pos/internal/model"
	"go-retail-pos/pkg/logger"
)

// Notifier delivers the bill confirmation to the customer. Called only
// after the bill is durably committed; delivery failure never fails the
// sale.
type Notifier interface {
	BillConfirmation(phone string, bill *model.Bill, branchName string)
}

// LogNotifier writes the formatted confirmation to the application log.
// An SMS gateway implementation slots in behind the same interface.
type LogNotifier struct{}

func (LogNotifier) BillConfirmation(phone string, bill *model.Bill, branchName string) {
	logger.Get().WithFields(logrus.Fields{
		"phone":       phone,
		"bill_number": bill.BillNumber,
	}).Info(FormatBillMessage(bill, branchName))
}

// FormatBillMessage renders the confirmation text: branch, bill number, the
// first three lines and the total.
func FormatBillMessage(bill *model.Bill, branchName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nBill #%s\n", branchName, bill.BillNumber)

	shown := bill.Items
	if len(shown) > 3 {
		shown = shown[:3]
	}
	for _, item := range shown {
		fmt.Fprintf(&b, "  %s: $%s\n", item.ProductName, item.LineTotal.StringFixed(2))
	}
	if rest := len(bill.Items) - len(shown); rest > 0 {
		fmt.Fprintf(&b, "  ... and %d more items\n", rest)
	}
	fmt.Fprintf(&b, "Total: $%s\nThank you for shopping with us!", bill.TotalAmount.StringFixed(2))
	return b.String()
}
