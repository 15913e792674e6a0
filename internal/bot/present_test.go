package bot

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jaruiz/ticket-scan-bot/internal/extraction"
)

var _ = Describe("Render", func() {
	var (
		record *extraction.ReceiptRecord
		output string
	)

	JustBeforeEach(func() {
		output = Render(record)
	})

	When("rendering a typical receipt", func() {
		BeforeEach(func() {
			var err error
			record, err = extraction.Normalize(`{"restaurant_name":"Cafe Sol","date":"12/05/2024","total":"15.00€","items":[{"name":"Cafe","total_price":"2.50€"}]}`)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should start with the summary header", func() {
			Expect(strings.HasPrefix(output, "🎉 *Resumen del ticket* 🎉")).To(BeTrue())
		})

		It("should include restaurant, date and total lines", func() {
			Expect(output).To(ContainSubstring("📍 *Restaurante:* Cafe Sol"))
			Expect(output).To(ContainSubstring("🗓️ *Fecha:* 12/05/2024"))
			Expect(output).To(ContainSubstring("💰 *Total:* 15.00€"))
		})

		It("should omit the time line when the model found none", func() {
			Expect(output).NotTo(ContainSubstring("⏰"))
		})

		It("should render the item with only name and total price", func() {
			Expect(output).To(ContainSubstring("➡️ Cafe *2.50€*"))
			Expect(output).NotTo(ContainSubstring("por unidad"))
		})
	})

	When("the time was readable", func() {
		BeforeEach(func() {
			record = &extraction.ReceiptRecord{
				RestaurantName: "Cafe Sol",
				Date:           "12/05/2024",
				Time:           "14:30",
				Total:          "15.00€",
				Items:          []extraction.LineItem{},
			}
		})

		It("should include the time line", func() {
			Expect(output).To(ContainSubstring("⏰ *Hora:* 14:30"))
		})
	})

	When("the time is the literal not-applicable marker", func() {
		BeforeEach(func() {
			record = &extraction.ReceiptRecord{
				RestaurantName: "Cafe Sol",
				Date:           "12/05/2024",
				Time:           "not applicable",
				Total:          "15.00€",
				Items:          []extraction.LineItem{},
			}
		})

		It("should suppress the time line", func() {
			Expect(output).NotTo(ContainSubstring("⏰"))
		})
	})

	When("an item has every field", func() {
		BeforeEach(func() {
			record = &extraction.ReceiptRecord{
				RestaurantName: "Cafe Sol",
				Date:           "12/05/2024",
				Time:           "14:30",
				Total:          "15.00€",
				Items: []extraction.LineItem{
					{Quantity: "2", Name: "Cerveza", UnitPrice: "1.50€", TotalPrice: "3.00€"},
				},
			}
		})

		It("should render quantity, name, total and per-unit price", func() {
			Expect(output).To(ContainSubstring("➡️ 2x Cerveza *3.00€* (👤 1.50€ por unidad)"))
		})
	})

	When("there are no items", func() {
		BeforeEach(func() {
			record = &extraction.ReceiptRecord{
				RestaurantName: "Cafe Sol",
				Date:           "12/05/2024",
				Time:           "14:30",
				Total:          "15.00€",
				Items:          []extraction.LineItem{},
			}
		})

		It("should emit the no-items line instead of a section", func() {
			Expect(output).To(ContainSubstring("No se encontraron artículos detallados."))
			Expect(output).NotTo(ContainSubstring("🍔"))
			Expect(output).NotTo(ContainSubstring("➡️"))
		})
	})
})

var _ = Describe("RenderFallback", func() {
	It("should prefix the explanation and keep the raw text", func() {
		output := RenderFallback("not a json")
		Expect(strings.HasPrefix(output, fallbackPrefix)).To(BeTrue())
		Expect(strings.HasSuffix(output, "not a json")).To(BeTrue())
	})
})
