package bot

// Button labels.
const (
	BtnBack           = "الرجوع للخلف 🔙"
	BtnMainMenu       = "القائمة الرئيسية 🏠"
	BtnLevel          = "تحديد المستوى 📝"
	BtnTraditional    = "التعلم بالطريقة التقليدية 📚"
	BtnConversation   = "التعلم عبر المحادثة 🗣️"
	BtnTests          = "الاختبارات 📝"
	BtnTips           = "نصائح واستراتيجيات 💡"
	BtnStatistics     = "الإحصائيات 📊"
	BtnDesigns        = "خلينا نصمملك 🎨"
	BtnRewards        = "المكافآت 🎁"
	BtnHelp           = "المساعدة والإعدادات ⚙️"
	BtnTestLevel      = "اختبر مستواك الحالي 📝"
	BtnTrackProgress  = "تتبع التقدم 📈"
	BtnNewTest        = "بدء اختبار جديد 🆕"
	BtnPreviousTests  = "قائمة الاختبارات السابقة 📜"
	BtnVerbal         = "لفظي 🗣️"
	BtnQuantitative   = "كمي 🔢"
	BtnMainCategory   = "التصنيف الرئيسي 🗂️"
	BtnSubCategory    = "التصنيف الفرعي 🗂️"
	BtnByCount        = "عدد الأسئلة 🔢"
	BtnByTime         = "الوقت المتاح ⏱️"
	BtnPrev           = "⬅️ السابق"
	BtnNext           = "التالي ➡️"
	BtnEndQuiz        = "إنهاء الاختبار ⏹️"
	BtnPDF            = "PDF 📄"
	BtnVideo          = "فيديو 🎬"
	BtnDownloadPDF    = "تحميل ملف PDF ⬇️"
	BtnDownloadVideo  = "تحميل الفيديو 🎥"
	BtnYes            = "نعم 👍"
	BtnNo             = "لا 👎"
	BtnEndChat        = "إنهاء المحادثة 🔚"
	BtnDailyGift      = "هديتك اليومية 🎁"
	BtnPremiumRewards = "مكافآت المذاكرة الفخمة 🏆"
	BtnMale           = "ذكر 👨"
	BtnFemale         = "أنثى 👩"
	BtnSharePhone     = "مشاركة رقم الهاتف 📱"
	BtnStartPractice  = "ابدأ المحادثة 🗣️"
	BtnAskQuestions   = "طرح الأسئلة ❔"
	BtnAskAnswer      = "اسأل عن الإجابة ❔"
	BtnAskMore        = "اسأل المزيد 🔄"
	BtnNextQuestion   = "السؤال التالي ➡️"
)

// Messages.
const (
	MsgMainMenu             = "إليك القائمة الرئيسية ☘️:"
	MsgLevelMenu            = "تحديد المستوى 🎯"
	MsgTestsMenu            = "الاختبارات 📚"
	MsgRewardsMenu          = "المكافآت ✨"
	MsgChooseType           = "اختر نوع الاختبار:"
	MsgChooseScope          = "اختر نوع التصنيف: 🧐"
	MsgChooseMain           = "اختر التصنيف الرئيسي (الصفحة %d من %d):"
	MsgChooseSub            = "اختر التصنيف الفرعي (الصفحة %d من %d):"
	MsgNoCategories         = "لا توجد تصنيفات متاحة حالياً. 😞"
	MsgChooseMode           = "هل تريدنا أن نقدم لك الاختبار عن طريق سؤالك عددًا معينًا من الأسئلة، أم عن طريق إعطائك اختبارا بمدة زمنية معينة؟ 🤔"
	MsgAskCount             = "كم عدد الأسئلة التي ترغب في الإجابة عليها؟ ✍️"
	MsgAskMinutes           = "كم دقيقة لديك متاحة للاختبار؟ ⏳"
	MsgBadCountRange        = "الرجاء إدخال عدد أسئلة بين 10 و 100. ⚠️"
	MsgBadMinutes           = "الرجاء إدخال وقت صحيح أكبر من 0 ولا يتجاوز 1440 دقيقة. ⚠️"
	MsgNotANumber           = "الرجاء إدخال عدد صحيح. اكتب الرقم واضغط على إرسال. ✏️"
	MsgNoQuestions          = "لا توجد أسئلة متاحة لهذا الاختيار حالياً. جرب تصنيفاً آخر أو مدة أطول. 😞"
	MsgLevelIntro           = "سيتم تقييم مستواك من خلال هذه الأسئلة. 📝\nعلما بأنه سيتم توضيح وشرح جميع الأسئلة لك خطوة بخطوة في نهاية الاختبار. 😊"
	MsgTestIntro            = "سيتم بدأ الاختبار 🏁.\nعلما بأنه سيتم توضيح وشرح جميع الأسئلة لك خطوة بخطوة في نهاية الاختبار. 💡"
	MsgPassagePrefix        = "النص: "
	MsgCorrect              = "إجابة صحيحة! ✅ \nالسؤال: %s \nالإجابة الصحيحة: %s"
	MsgWrong                = "إجابة خاطئة ❌ \nالسؤال: %s \nإجابتك: %s \nالإجابة الصحيحة: %s"
	MsgStaleAnswer          = "تمت الإجابة على هذا السؤال مسبقاً."
	MsgQuizOver             = "هذا الاختبار انتهى."
	MsgQuizCancelled        = "تم إنهاء الاختبار. يمكنك البدء من جديد في أي وقت. 👋"
	MsgAnalyzing            = "جاري تحليل أدائك... ⏳"
	MsgChooseFormat         = "اختر صيغة الملف النهائي:"
	MsgFormatChosen         = "تم اختيار صيغة الملف مسبقاً."
	MsgGeneratingPDF        = "جارٍ إنشاء ملف PDF... ⏳"
	MsgGeneratingVideo      = "جاري إنشاء الفيديو... 🎬"
	MsgArtifactFailed       = "تعذر إنشاء الملف حالياً. يمكنك المحاولة لاحقاً من قائمة الاختبارات السابقة. ⚠️"
	MsgAIOffer              = "هل تريد استفسار عن أي سؤال بواسطة الذكاء الاصطناعي؟ 🤖"
	MsgAINo                 = "شكرًا لك. يمكنك العودة للقائمة الرئيسية. 😊"
	MsgAIYes                = "تفضل، كيف يمكنني مساعدتك في أسئلة تحديد المستوى؟ 😊"
	MsgAssistantHello       = "مرحباً! أنا مساعدك الشخصي. اسألني عن أي شيء يخص اختبار القدرات. 🤖"
	MsgChatError            = "حدث خطأ أثناء معالجة طلبك. يرجى المحاولة مرة أخرى لاحقًا. ⚠️"
	MsgChatEnded            = "شكرا لك على الدردشة معي. إذا احتجت إلى مساعدة مرة أخرى، فقط ابدأ دردشة جديدة! 😊"
	MsgHistoryCleared       = "تم مسح سجل المحادثة. 🧹"
	MsgNoTests              = "ليس لديك اختبارات سابقة. 😞"
	MsgNoLevelTests         = "لم تقم بأي اختبارات مستوى بعد. 📝"
	MsgTestsPage            = "قائمة اختباراتك السابقة (صفحة %d من %d): 📜"
	MsgLevelPage            = "اختر اختبار تحديد المستوى لعرض تفاصيله (صفحة %d من %d): 🔍"
	MsgTestNotFound         = "عذراً، لم يتم العثور على بيانات الاختبار. 😞"
	MsgGiftTaken            = "لقد حصلت على هديتك اليومية بالفعل. عد غداً لهدية جديدة! 🎁"
	MsgGiftPreparing        = "جاري إعداد هديتك اليومية... 🎁"
	MsgGiftEmpty            = "لا توجد هدية لهذا اليوم. 🙏"
	MsgGiftFailed           = "عذرًا، حدث خطأ أثناء جلب هديتك اليومية. حاول مرة أخرى لاحقًا. 😥"
	MsgGiftShown            = "تم عرض هديتك اليومية! 🎁"
	MsgSectionSoon          = "هذا القسم قيد التطوير حالياً، ترقب الجديد قريباً! 🚧"
	MsgChooseGender         = "لنبدأ بالتعرف عليك. اختر جنسك:"
	MsgAskPhone             = "شاركنا رقم هاتفك ليظهر في تقاريرك. 📱"
	MsgPhoneSaved           = "تم حفظ رقم هاتفك. ✅"
	MsgUseMenu              = "استخدم /main_menu لعرض القائمة الرئيسية. ☘️"
	MsgGenericError         = "حدث خطأ، يرجى المحاولة مرة أخرى. ⚠️"
	MsgSubscriptionRequired = "هذا القسم متاح للمشتركين فقط. تواصل مع الدعم لتفعيل اشتراكك. 🔒"
	MsgNotYourQuiz          = "هذا الاختبار ليس لك. ابدأ اختبارك من القائمة الرئيسية. 🙅"

	MsgPracticeMenu        = "التعلم عبر المحادثة 🗣️\nاختر أحد الخيارات أدناه:"
	MsgPracticeQuestion    = "حسنا هذا سؤال لك كيف تعتقد سيكون حله 🤔"
	MsgThinking            = "جارٍ التفكير في رد... 🤔"
	MsgPracticeHint        = "%s\n\n💡 تلميح: %s"
	MsgPracticeReview      = "هل لديك أي استفسارات لتسأل عنها؟ 🙋‍♂️"
	MsgPracticeAsk         = "ما هو سؤالك حول الإجابة؟"
	MsgChooseOption        = "اختر أحد الخيارات أدناه:"
	MsgNoPracticeQuestions = "لا توجد أسئلة متاحة حاليًا 😞."
	MsgPracticeEnded       = "تم إلغاء التعلم. يمكنك العودة في أي وقت من القائمة الرئيسية. 👋"
)
